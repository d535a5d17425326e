package tui

import (
	"os"
	"strings"
	"time"
)

// Theme selects the light or dark palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the initial palette.
func WithTheme(theme Theme) Option {
	return func(m *Model) {
		switch Theme(strings.ToLower(strings.TrimSpace(string(theme)))) {
		case ThemeLight:
			m.theme = ThemeLight
		case ThemeDark:
			m.theme = ThemeDark
		}
	}
}

// WithStatsPanel sets whether the stats panel starts visible.
func WithStatsPanel(show bool) Option {
	return func(m *Model) {
		m.showStats = show
	}
}

// WithDescriptions sets whether cards render a description line.
func WithDescriptions(show bool) Option {
	return func(m *Model) {
		m.showDescription = show
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithExportPath sets the file written by the export key.
func WithExportPath(path string) Option {
	return func(m *Model) {
		if strings.TrimSpace(path) != "" {
			m.exportPath = path
		}
	}
}

func WithClipboard(write ClipboardWriter) Option {
	return func(m *Model) {
		m.clipboard = write
	}
}

// WithFileIO replaces the file readers and writers used for import and export.
func WithFileIO(read func(string) ([]byte, error), write func(string, []byte, os.FileMode) error) Option {
	return func(m *Model) {
		if read != nil {
			m.readFile = read
		}
		if write != nil {
			m.writeFile = write
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}
