package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items [][2]string
}

var helpSections = []helpSection{
	{"Views", [][2]string{
		{"tab", "Next view"},
		{"shift+tab", "Previous view"},
		{"q/s/y/l", "Queue/System/History/Logs"},
		{"j/k", "Scroll"},
		{"pgup/pgdn", "Page up/down"},
	}},
	{"Server", [][2]string{
		{"x", "Interrupt running job"},
		{"r", "Refresh now"},
	}},
	{"General", [][2]string{
		{"T", "Cycle theme"},
		{"h/?", "Toggle help"},
		{"e/ctrl+c", "Quit"},
	}},
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	for _, section := range helpSections {
		b.WriteString("\n\n")
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		for _, item := range section.items {
			b.WriteString("\n")
			b.WriteString(keyStyle.Render(item[0]))
			b.WriteString(styles.Text.Render(item[1]))
		}
	}
	return m.overlay(b.String(), m.theme.Accent, 42)
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Interrupt the running job?"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Server: " + truncateMiddle(m.serverAddress(), 28)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Running: "))
	b.WriteString(styles.Text.Render(strconv.Itoa(m.snapshot.Queue.Running)))
	b.WriteString("\n\n")
	b.WriteString(styles.WarningText.Render("y"))
	b.WriteString(styles.Text.Render(" confirm   "))
	b.WriteString(styles.WarningText.Render("any key"))
	b.WriteString(styles.Text.Render(" cancel"))
	return m.overlay(b.String(), m.theme.Danger, 40)
}

// overlay centres a bordered modal over the screen.
func (m Model) overlay(content, borderColor string, width int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(1, 2).
		Width(width).
		Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
