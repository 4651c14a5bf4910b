package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(helpStyle.Render("ctrl+c: quit"))

	return b.String()
}

// renderTable lays out label/value rows as a two-column table.
func renderTable(header [2]string, rows [][2]string) string {
	labelWidth := lipgloss.Width(header[0])
	for _, row := range rows {
		if w := lipgloss.Width(row[0]); w > labelWidth {
			labelWidth = w
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-*s │ %s\n", labelWidth, header[0], header[1]))
	b.WriteString(strings.Repeat("─", labelWidth))
	b.WriteString("─┼─")
	b.WriteString(strings.Repeat("─", 40))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-*s │ %s\n", labelWidth, row[0], row[1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFeedback(b *strings.Builder, status, errMsg string) {
	if status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("OK: " + status))
		b.WriteString("\n")
	}
	if errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + errMsg))
		b.WriteString("\n")
	}
}

func valueOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
