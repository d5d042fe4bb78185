package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeAnalysisID computes a deterministic analysis_id using SHA256.
// Formula: SHA256(mint|requested_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeAnalysisID(mint string, requestedAt int64) string {
	data := fmt.Sprintf("%s|%d", mint, requestedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeSampleID computes a deterministic sample_id for a synthetic
// timeline. Formula: SHA256(pattern|seed|tx_count)
func ComputeSampleID(pattern string, seed int64, txCount int) string {
	data := fmt.Sprintf("%s|%d|%d", pattern, seed, txCount)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
