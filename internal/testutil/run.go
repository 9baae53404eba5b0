// Package testutil provides shared test helpers for deterministic runs.
package testutil

// FixedRunGenerator generates the same run token every time.
//
// Unlike journal.FixedGenerator which returns tokens in sequence, this
// generator always returns the same token. Useful for scenarios where every
// recorded transition should share one run token, so the resulting trace is
// byte-identical across runs.
//
// Thread-safety: FixedRunGenerator is stateless and safe for concurrent use.
type FixedRunGenerator struct {
	token string
}

// NewFixedRunGenerator creates a new fixed run token generator.
//
// If token is empty, Generate() returns "test-run-default".
func NewFixedRunGenerator(token string) *FixedRunGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedRunGenerator{token: token}
}

// Generate returns the fixed run token.
//
// Implements journal.TokenGenerator.
func (g *FixedRunGenerator) Generate() string {
	return g.token
}
