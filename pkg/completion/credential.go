package completion

import (
	"errors"
	"strings"
)

// ErrInvalidCredentialFormat is returned when an API key does not carry the
// expected "sk-" prefix.
var ErrInvalidCredentialFormat = errors.New("invalid credential format: API key must start with sk-")

// Credential selects between a real API key and demo mode. The zero value is
// demo mode, so an unconfigured client never reaches the network.
type Credential struct {
	key string
}

// Demo returns the demo-mode credential.
func Demo() Credential {
	return Credential{}
}

// Key returns a live credential, validating the key format.
func Key(key string) (Credential, error) {
	if !strings.HasPrefix(key, "sk-") {
		return Credential{}, ErrInvalidCredentialFormat
	}
	return Credential{key: key}, nil
}

// FromConfig maps a configured key string to a credential: empty selects
// demo mode, anything else must be a valid key.
func FromConfig(key string) (Credential, error) {
	if key == "" {
		return Demo(), nil
	}
	return Key(key)
}

// IsDemo reports whether the credential selects demo mode.
func (c Credential) IsDemo() bool {
	return c.key == ""
}
