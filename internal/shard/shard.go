// Package shard provides partition key generation for distributed DynamoDB tables.
package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// UniqueConstraintPK computes a hash-distributed partition key for a unique constraint.
// This ensures each constraint goes to a different partition, eliminating hot partition risk.
func UniqueConstraintPK(entityType, field, value string) string {
	data := fmt.Sprintf("%s#%s#%s", entityType, field, value)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}

// Segments clamps a requested parallel scan segment count to DynamoDB's
// accepted range for this store (1..256).
func Segments(n int) int {
	if n < 1 {
		return 1
	}
	if n > 256 {
		return 256
	}
	return n
}
