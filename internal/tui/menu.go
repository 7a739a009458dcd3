package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderMenu renders the main menu screen
func (m Model) renderMenu() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	menuItemStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	menuItemSelectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00d7ff")).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")).PaddingLeft(2)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true).MarginTop(1)

	b.WriteString(titleStyle.Render("statekeep — Main Menu"))
	b.WriteString("\n\n")

	for i, item := range DefaultMenuItems() {
		prefix := fmt.Sprintf("[%s] ", item.Key)

		var itemText string
		if i == m.selection {
			itemText = menuItemSelectedStyle.Render(prefix + item.Label)
		} else {
			itemText = menuItemStyle.Render(prefix + item.Label)
		}

		b.WriteString(itemText)
		b.WriteString("\n")
		b.WriteString(descStyle.Render(item.Description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Navigate: ↑/↓ or numbers | Select: Enter/Space | Back: Esc | Quit: q"))
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("⚠ " + m.lastError))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTemplatesScreen renders the template listing screen
func (m Model) renderTemplatesScreen() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af")).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)

	b.WriteString(titleStyle.Render("Templates"))
	b.WriteString("\n\n")

	if len(m.templates) == 0 {
		b.WriteString(detailStyle.Render("No templates found in " + m.templateDir))
		b.WriteString("\n")
	}

	for _, info := range m.templates {
		if info.Err != "" {
			b.WriteString(errorStyle.Render("✗ " + info.Name + " — " + info.Err))
			b.WriteString("\n")
			continue
		}
		b.WriteString(nameStyle.Render(info.Name))
		b.WriteString(detailStyle.Render(fmt.Sprintf("  v%d, %s scope, %d rules", info.Version, info.Scope, info.Rules)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Press 'r' to refresh, Esc to return to menu, 'q' to quit"))
	b.WriteString("\n")

	return b.String()
}

// renderReportScreen renders the last operation result
func (m Model) renderReportScreen() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)

	b.WriteString(titleStyle.Render("Last Operation"))
	b.WriteString("\n\n")

	if m.lastResult == nil {
		b.WriteString(valueStyle.Render("No operation has run in this session."))
		b.WriteString("\n")
	} else {
		r := m.lastResult
		b.WriteString(labelStyle.Render("Run:       "))
		b.WriteString(valueStyle.Render(r.RunID))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Summary:   "))
		b.WriteString(valueStyle.Render(r.Summary()))
		b.WriteString("\n")
		for _, failure := range r.Failures {
			b.WriteString(errorStyle.Render("  ✗ " + failure.RuleID + ": " + failure.Reason))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Press Esc to return to menu, 'q' to quit"))
	b.WriteString("\n")

	return b.String()
}

// renderHelpScreen renders the help screen
func (m Model) renderHelpScreen() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af")).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(2)

	b.WriteString(titleStyle.Render("Help — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	shortcuts := []struct{ key, desc string }{
		{"1-2, ?      ", "Quick menu selection by number/key"},
		{"↑ / ↓       ", "Navigate menu items"},
		{"Enter/Space ", "Select highlighted item"},
		{"r           ", "Refresh the template list"},
		{"Esc         ", "Return to main menu"},
		{"q / Ctrl+C  ", "Quit statekeep"},
	}
	for _, s := range shortcuts {
		b.WriteString(keyStyle.Render(s.key))
		b.WriteString(descStyle.Render(s.desc))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render("Backup and restore run from the command line: statekeep help"))
	b.WriteString("\n")

	return b.String()
}
