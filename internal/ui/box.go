package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// bgPainter renders segments on a fixed background. Styled segments reset
// the background at their end, so spaces between them are painted too.
type bgPainter struct {
	bg    lipgloss.Color
	space string
}

func newBgPainter(color string) bgPainter {
	bg := lipgloss.Color(color)
	return bgPainter{bg: bg, space: lipgloss.NewStyle().Background(bg).Render(" ")}
}

func (p bgPainter) render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(p.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, p.space)
}

func (p bgPainter) gap(n int) string {
	return strings.Repeat(p.space, n)
}

func (p bgPainter) join(parts []string, gap int) string {
	return strings.Join(parts, p.gap(gap))
}

// fill cuts content to width cells and pads the rest with background.
func (p bgPainter) fill(content string, width int) string {
	return lipgloss.NewStyle().Background(p.bg).Width(width).Render(ansi.Truncate(content, width, ""))
}

// renderBox frames content with the title set into the top border:
// ┌─── Title ───┐. Lines beyond the box height are dropped.
func (m Model) renderBox(title, content string, width, height int) string {
	if width < 12 || height < 2 {
		return ""
	}
	paint := newBgPainter(m.theme.Panel)
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Border))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	inner := width - 2
	title = truncate(title, inner-4)
	left := (inner - len([]rune(title)) - 2) / 2
	right := inner - len([]rune(title)) - 2 - left

	var b strings.Builder
	b.WriteString(paint.render("┌"+strings.Repeat("─", left), border))
	b.WriteString(paint.render(" "+title+" ", titleStyle))
	b.WriteString(paint.render(strings.Repeat("─", right)+"┐", border))

	lines := strings.Split(content, "\n")
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		b.WriteString("\n")
		b.WriteString(paint.render("│", border))
		b.WriteString(paint.fill(line, inner))
		b.WriteString(paint.render("│", border))
	}
	b.WriteString("\n")
	b.WriteString(paint.render("└"+strings.Repeat("─", inner)+"┘", border))
	return b.String()
}
