package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comfyq/internal/comfyui"
	"github.com/five82/comfyq/internal/logtail"
	"github.com/five82/comfyq/internal/storage"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline scales sample totals to block runes. The newest width samples
// are kept; an all-zero series renders as the lowest block.
func sparkline(samples []storage.Sample, width int) string {
	if len(samples) == 0 || width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	peak := 0
	for _, s := range samples {
		peak = max(peak, s.Total())
	}
	var b strings.Builder
	for _, s := range samples {
		idx := 0
		if peak > 0 {
			idx = s.Total() * (len(sparkRunes) - 1) / peak
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func (m Model) panelStyles() Styles {
	return m.theme.Styles().WithBackground(m.theme.Panel)
}

func (m Model) renderQueue() string {
	styles := m.panelStyles()
	snap := m.snapshot
	if !snap.HasQueue {
		if snap.LastError != nil {
			return styles.DangerText.Render(comfyui.Classify(snap.LastError)) + "\n" +
				styles.MutedText.Render("Waiting for the server to answer /queue...")
		}
		return styles.MutedText.Render("Waiting for the first queue poll...")
	}

	var b strings.Builder
	b.WriteString(styles.MutedText.Render("Running ") + styles.Text.Render(fmt.Sprint(snap.Queue.Running)))
	b.WriteString(styles.MutedText.Render("   Pending ") + styles.Text.Render(fmt.Sprint(snap.Queue.Pending)))
	b.WriteString(styles.MutedText.Render("   Total ") + styles.Text.Render(fmt.Sprint(snap.Queue.Total)))
	b.WriteString("\n")

	if line := sparkline(m.depth, m.contentWidth()-16); line != "" {
		peak := 0
		for _, s := range m.depth {
			peak = max(peak, s.Total())
		}
		b.WriteString(styles.MutedText.Render("Depth "))
		b.WriteString(styles.AccentText.Render(line))
		b.WriteString(styles.FaintText.Render(fmt.Sprintf(" peak %d", peak)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	m.writeJobs(&b, styles, "running", snap.Queue.QueueRunning)
	b.WriteString("\n")
	m.writeJobs(&b, styles, "pending", snap.Queue.QueuePending)
	return b.String()
}

func (m Model) writeJobs(b *strings.Builder, styles Styles, state string, jobs []comfyui.JobRecord) {
	b.WriteString(styles.Badge(state).Render(strings.ToUpper(state)))
	b.WriteString("\n")
	if len(jobs) == 0 {
		b.WriteString(styles.FaintText.Render("  none"))
		b.WriteString("\n")
		return
	}
	idWidth := max(m.contentWidth()-12, 8)
	for _, job := range jobs {
		n, ok := job.Number()
		id := job.PromptID()
		if id == "" {
			id = truncate(string(job), idWidth)
		}
		b.WriteString(styles.FaintText.Render("  #" + padRight(formatNumber(n, ok), 6)))
		b.WriteString(styles.Text.Render(truncateMiddle(id, idWidth)))
		b.WriteString("\n")
	}
}

func (m Model) renderSystem() string {
	styles := m.panelStyles()
	stats := m.snapshot.Stats
	if stats == nil {
		return styles.MutedText.Render("No system stats yet.")
	}

	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.MutedText.Render(padRight(label, 10)))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}
	row("OS", stats.OS())
	row("Version", stats.Version())

	devices := stats.Devices()
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Devices (%d)", len(devices))))
	b.WriteString("\n")
	barWidth := min(max(m.contentWidth()-50, 10), 40)
	for _, d := range devices {
		b.WriteString(styles.Text.Render(truncate(d.Name, m.contentWidth())))
		b.WriteString("\n")
		if d.Type != "" {
			b.WriteString(styles.InfoText.Render("  " + d.Type))
			b.WriteString("\n")
		}
		if d.VRAMTotal > 0 {
			used := d.VRAMUsed()
			b.WriteString("  ")
			b.WriteString(m.usageBar(used/d.VRAMTotal, barWidth))
			b.WriteString(styles.MutedText.Render(fmt.Sprintf(" %s / %s", humanizeBytes(used), humanizeBytes(d.VRAMTotal))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// usageBar renders ratio in [0,1] as a filled bar that turns to warning
// and danger colours as it fills.
func (m Model) usageBar(ratio float64, width int) string {
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio * float64(width))
	color := m.theme.Success
	switch {
	case ratio >= 0.9:
		color = m.theme.Danger
	case ratio >= 0.7:
		color = m.theme.Warning
	}
	bg := lipgloss.Color(m.theme.Panel)
	on := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(bg)
	off := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Background(bg)
	return on.Render(strings.Repeat("█", filled)) + off.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderHistory() string {
	styles := m.panelStyles()
	history := m.snapshot.History
	if history == nil {
		return styles.MutedText.Render("No history yet.")
	}
	entries := history.Entries()
	if len(entries) == 0 {
		return styles.MutedText.Render(fmt.Sprintf("%d history entries (unrecognised shape).", history.Len()))
	}

	var b strings.Builder
	b.WriteString(styles.FaintText.Render(padRight("#", 8) + padRight("STATUS", 14) + padRight("OUT", 5) + "PROMPT"))
	b.WriteString("\n")
	idWidth := max(m.contentWidth()-27, 8)
	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = "pending"
			if e.Completed {
				status = "success"
			}
		}
		color := lipgloss.Color(m.theme.StateColor(status))
		b.WriteString(styles.FaintText.Render(padRight(formatNumber(e.Number, true), 8)))
		b.WriteString(styles.Text.Foreground(color).Render(padRight(truncate(status, 13), 14)))
		b.WriteString(styles.MutedText.Render(padRight(fmt.Sprint(e.Outputs), 5)))
		b.WriteString(styles.Text.Render(truncateMiddle(e.PromptID, idWidth)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLogs() string {
	styles := m.panelStyles()
	if m.logPath() == "" {
		return styles.MutedText.Render("Logging to a file is disabled.")
	}
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("No log lines in " + m.logPath())
	}
	lines := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		style := styles.Text
		switch logtail.Level(line) {
		case "ERROR":
			style = styles.DangerText
		case "WARN":
			style = styles.WarningText
		case "DEBUG":
			style = styles.FaintText
		}
		lines[i] = style.Render(truncate(line, m.contentWidth()))
	}
	return strings.Join(lines, "\n")
}
