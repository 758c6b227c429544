package batcher

import "fmt"

// TokenEstimator prices a prompt fragment in tokens. The real system
// delegates to the configured code-generator's calculate_token_size; the
// core only ever needs a length-proportional estimate to decide batch
// boundaries, so it consumes this as an opaque callable (spec §6).
type TokenEstimator func(text string) int

// DefaultTokenEstimator approximates token density at roughly 4
// characters per token, the same rough ratio the indexer's chunker uses
// for documentation chunking.
func DefaultTokenEstimator(text string) int {
	return len(text) / 4
}

// FileBlock renders the prompt fragment spec §4.8 prices for one
// candidate file.
func FileBlock(path, content string) string {
	return fmt.Sprintf("=== File Path (Absolute): %s ===\n%s\n", path, content)
}
