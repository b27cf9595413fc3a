// Package pricing holds the token estimator and cost arithmetic shared by
// the live client and the demo responder.
package pricing

import "unicode/utf8"

// EstimateTokens approximates the billing token count of text as one token
// per four characters, counting runes so multibyte text is not overbilled.
// It is used whenever the remote service omits a usage object. Downstream
// cost figures depend on this exact integer arithmetic, so it must not be
// "improved" without versioning stored data.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// EstimateCost returns the estimated USD cost of tokens at a flat
// per-million-token price.
func EstimateCost(tokens int, pricePerMillion float64) float64 {
	return float64(tokens) / 1_000_000 * pricePerMillion
}
