package ui

import (
	"fmt"
	"strings"
)

// ProgressBar renders a bar with percentage using the theme's glyphs.
func ProgressBar(t Theme, done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(t.BarFull, filled) + strings.Repeat(t.BarFree, width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel draws lines inside a framed box using the current theme.
func (p *Printer) Panel(lines []string) {
	fmt.Fprintln(p.out, PanelString(p.theme, strings.Join(lines, "\n")))
}

// PanelString frames inner with the theme border.
func PanelString(t Theme, inner string) string {
	return t.Frame.Render(inner)
}
