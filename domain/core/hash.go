package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell runs apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeRunFingerprint hashes every input that determines a run's outcome.
// Two runs with equal fingerprints produce identical metrics.
func ComputeRunFingerprint(size int, conditions map[string]float64, condition string, sensitivity, specificity float64, seed uint64) Hash {
	keys := make([]string, 0, len(conditions))
	for k := range conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	fmt.Fprintf(&data, "size=%d;", size)
	for _, key := range keys {
		fmt.Fprintf(&data, "%s=%g;", key, conditions[key])
	}
	fmt.Fprintf(&data, "test=%s;sens=%g;spec=%g;seed=%d", condition, sensitivity, specificity, seed)

	return NewHash([]byte(data.String()))
}
