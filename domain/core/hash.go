package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns a truncated form suitable for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// DatasetFingerprint identifies the content of a loaded dataset
type DatasetFingerprint Hash

func (h DatasetFingerprint) String() string { return Hash(h).String() }
func (h DatasetFingerprint) Short() string  { return Hash(h).Short() }

// ComputeDatasetFingerprint hashes the column list and cell values in order,
// so the same file always yields the same fingerprint.
func ComputeDatasetFingerprint(columns []string, rows []map[string]string) DatasetFingerprint {
	var data strings.Builder
	data.WriteString(strconv.Itoa(len(rows)))
	data.WriteString("\x1f")
	for _, col := range columns {
		data.WriteString(col)
		data.WriteString("\x1f")
	}
	for _, row := range rows {
		for _, col := range columns {
			data.WriteString(row[col])
			data.WriteString("\x1e")
		}
	}
	return DatasetFingerprint(NewHash([]byte(data.String())))
}
