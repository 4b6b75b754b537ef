package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comfyq/internal/comfyui"
)

// renderHeader draws the status line: address, connection state, queue
// counts, the time of the last poll and any error or notice.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	paint := newBgPainter(m.theme.Surface)
	compact := m.width < 100

	parts := []string{
		paint.render("comfyq", styles.Logo),
		paint.render(truncateMiddle(m.serverAddress(), 32), styles.MutedText),
		m.connectionBadge(styles, paint),
	}

	snap := m.snapshot
	if snap.HasQueue {
		running := styles.Text.Foreground(lipgloss.Color(m.theme.StateColor("running")))
		parts = append(parts,
			paint.render("Running:", styles.MutedText)+paint.gap(1)+
				paint.render(fmt.Sprint(snap.Queue.Running), running),
			paint.render("Pending:", styles.MutedText)+paint.gap(1)+
				paint.render(fmt.Sprint(snap.Queue.Pending), styles.Text),
		)
		if !compact {
			parts = append(parts,
				paint.render("Total:", styles.MutedText)+paint.gap(1)+
					paint.render(fmt.Sprint(snap.Queue.Total), styles.Text))
		}
	}

	if !snap.LastUpdated.IsZero() {
		ts := snap.LastUpdated.Format("15:04:05")
		if age := time.Since(snap.LastUpdated); age > 10*time.Second {
			ts += " (" + humanizeDuration(age) + " ago)"
		}
		parts = append(parts, paint.render(ts, styles.FaintText))
	}

	if snap.LastError != nil {
		label := comfyui.Classify(snap.LastError)
		if snap.ConsecutiveFailures > 1 {
			label = fmt.Sprintf("%s ×%d", label, snap.ConsecutiveFailures)
		}
		parts = append(parts, paint.render(label, styles.DangerText))
		if !compact {
			parts = append(parts, paint.render(truncate(snap.LastError.Error(), 60), styles.FaintText))
		}
	}

	if m.notice != "" {
		style := styles.AccentText
		if m.noticeIsError {
			style = styles.WarningText
		}
		parts = append(parts, paint.render(m.notice, style))
	}

	return paint.fill(paint.gap(1)+paint.join(parts, 2), m.width)
}

func (m Model) connectionBadge(styles Styles, paint bgPainter) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		return paint.render("● OFFLINE", styles.DangerText)
	case snap.LastError != nil:
		return paint.render("● RETRYING", styles.WarningText)
	case snap.HasQueue:
		return paint.render("● ONLINE", styles.SuccessText)
	case m.info != nil:
		return paint.render("● REACHABLE", styles.InfoText)
	default:
		return paint.render("● CONNECTING", styles.WarningText)
	}
}

func (m Model) serverAddress() string {
	if m.client == nil {
		return ""
	}
	return m.client.Address()
}

// renderCommandBar lists the active view and the key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	paint := newBgPainter(m.theme.Surface)

	var hints []string
	for _, b := range m.keys.shortHelp() {
		h := b.Help()
		label := h.Desc
		if b.Keys()[0] == m.currentViewKey() {
			hints = append(hints, paint.render(h.Key, styles.WarningText)+paint.gap(1)+paint.render(label, styles.AccentText))
			continue
		}
		hints = append(hints, paint.render(h.Key, styles.WarningText)+paint.gap(1)+paint.render(label, styles.MutedText))
	}
	return paint.fill(paint.gap(1)+paint.join(hints, 2), m.width)
}

func (m Model) currentViewKey() string {
	var b key.Binding
	switch m.currentView {
	case ViewSystem:
		b = m.keys.ViewSystem
	case ViewHistory:
		b = m.keys.ViewHistory
	case ViewLogs:
		b = m.keys.ViewLogs
	default:
		b = m.keys.ViewQueue
	}
	return b.Keys()[0]
}
