// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashString computes an HMAC-SHA256 signature over the given string
// using the provided hash key and returns the result as a hex-encoded string.
//
// A new HMAC instance is created on each call.
//
// Example usage:
//
//	signature := utils.HashString("some data", "my-secret-key")
func HashString(data string, hashKey string) string {
	return hex.EncodeToString(hashBytes([]byte(data), []byte(hashKey)))
}

// EqualHashes compares two hex-encoded digests in constant time.
// Malformed input never matches.
func EqualHashes(a, b string) bool {
	rawA, err := hex.DecodeString(a)
	if err != nil || len(rawA) == 0 {
		return false
	}
	rawB, err := hex.DecodeString(b)
	if err != nil {
		return false
	}

	return hmac.Equal(rawA, rawB)
}

func hashBytes(data, hashKey []byte) []byte {
	hasher := hmac.New(sha256.New, hashKey)
	hasher.Write(data)
	return hasher.Sum(nil)
}
