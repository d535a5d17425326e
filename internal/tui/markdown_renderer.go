package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders task descriptions and rebuilds the glamour
// renderer when the wrap width or theme changes.
type markdownRenderer struct {
	width    int
	theme    Theme
	renderer *glamour.TermRenderer
}

func (r *markdownRenderer) render(markdown string, width int, theme Theme) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth || r.theme != theme {
		style := "dark"
		if theme == ThemeLight {
			style = "light"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.theme = theme
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}
