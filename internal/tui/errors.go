// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
)

// humanizeError turns transport errors into a line fit for the status area.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, adapter.ErrTooManyRequests):
		return "too many attempts, try again later"
	case errors.Is(err, adapter.ErrNoToken):
		return "not logged in"
	case errors.Is(err, adapter.ErrServiceUnavailable):
		return "server is unavailable"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "network is down or server is unavailable"
	}

	return err.Error()
}
