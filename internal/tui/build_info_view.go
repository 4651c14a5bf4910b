// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/MKhiriev/go-identity-keeper/models"
)

func renderBuildInfoWindow(info models.AppBuildInfo) string {
	return renderPage("ABOUT", renderTable([2]string{"Field", "Value"}, [][2]string{
		{"Application", "identity-client"},
		{"Version", valueOrNA(info.Version)},
		{"Date", valueOrNA(info.Date)},
		{"Commit", valueOrNA(info.Commit)},
	}), "esc: back")
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
