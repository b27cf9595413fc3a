package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/sentinel-hse/sentinel/pkg/completion"
	"github.com/sentinel-hse/sentinel/pkg/config"
	"github.com/sentinel-hse/sentinel/pkg/history"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

const defaultConfigPath = "sentinel.yaml"

// loadConfig reads the config file. The default path is allowed to be
// absent; an explicitly requested file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildClient creates a completion client from config. An empty api.key
// yields a demo client that never touches the network.
func buildClient(cfg *config.Config) (*completion.Client, error) {
	cred, err := completion.FromConfig(cfg.API.Key)
	if err != nil {
		return nil, err
	}
	return completion.New(cred, completion.Options{
		BaseURL:         cfg.API.BaseURL,
		Model:           cfg.API.Model,
		MaxTokens:       cfg.API.MaxTokens,
		Temperature:     cfg.API.Temperature,
		Timeout:         cfg.API.Timeout,
		PricePerMillion: cfg.Pricing.PricePerMillion,
	}), nil
}

func openStore(cfg *config.Config) (*usage.SQLiteStore, error) {
	store, err := usage.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open usage store: %w", err)
	}
	return store, nil
}

func openArchive(cfg *config.Config) (*history.Archive, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	archive, err := history.New(cfg.DBPath, cfg.History.RetentionDays)
	if err != nil {
		return nil, fmt.Errorf("open history archive: %w", err)
	}
	return archive, nil
}
