package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/evanschultz/kanpro/internal/app"
	"github.com/evanschultz/kanpro/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	DefaultStorageKey   = app.DefaultStorageKey
	DefaultDoneColumnID = domain.DefaultDoneColumnID
	DefaultColumnColor  = domain.DefaultColumnColor
	DefaultExportPath   = app.DefaultExportFileName
)

// ReservedKeys lists the fixed board bindings that [keys] values may not take.
var ReservedKeys = []string{
	"q", "ctrl+c", "r", "?",
	"h", "left", "l", "right", "k", "up", "j", "down",
	"[", "]", "J", "K",
	"n", "C", "i", "enter", "e", "d",
	"s", "t", "x", "y", "I", "R", "esc",
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Board    BoardConfig    `toml:"board"`
	Export   ExportConfig   `toml:"export"`
	UI       UIConfig       `toml:"ui"`
	Logging  LoggingConfig  `toml:"logging"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Key string `toml:"key"`
}

type BoardConfig struct {
	DoneColumnID       string `toml:"done_column_id"`
	DefaultColumnColor string `toml:"default_column_color"`
}

type ExportConfig struct {
	Path string `toml:"path"`
}

type UIConfig struct {
	Theme           Theme `toml:"theme"`
	ShowStats       bool  `toml:"show_stats"`
	ShowDescription bool  `toml:"show_description"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type KeyConfig struct {
	Grab   string `toml:"grab"`
	Search string `toml:"search"`
	Filter string `toml:"filter"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			Key: DefaultStorageKey,
		},
		Board: BoardConfig{
			DoneColumnID:       DefaultDoneColumnID,
			DefaultColumnColor: DefaultColumnColor,
		},
		Export: ExportConfig{
			Path: DefaultExportPath,
		},
		UI: UIConfig{
			Theme:           ThemeDark,
			ShowStats:       true,
			ShowDescription: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".kanpro/log",
			},
		},
		Keys: KeyConfig{
			Grab:   " ",
			Search: "/",
			Filter: "f",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}
	if strings.TrimSpace(c.Board.DoneColumnID) == "" {
		return errors.New("board.done_column_id is required")
	}
	if color := strings.TrimSpace(c.Board.DefaultColumnColor); color != "" && !hexColorPattern.MatchString(color) {
		return fmt.Errorf("invalid board.default_column_color: %q", c.Board.DefaultColumnColor)
	}
	if strings.TrimSpace(c.Export.Path) == "" {
		return errors.New("export.path is required")
	}

	switch Theme(strings.TrimSpace(strings.ToLower(string(c.UI.Theme)))) {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid ui.theme: %q", c.UI.Theme)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	seenKeys := map[string]string{}
	for name, value := range map[string]string{
		"grab":   c.Keys.Grab,
		"search": c.Keys.Search,
		"filter": c.Keys.Filter,
	} {
		if value == "" {
			return fmt.Errorf("keys.%s is required", name)
		}
		normalized := normalizeKey(value)
		if slices.Contains(ReservedKeys, normalized) {
			return fmt.Errorf("keys.%s collides with a fixed binding: %q", name, value)
		}
		if other, ok := seenKeys[normalized]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", name, other, value)
		}
		seenKeys[normalized] = name
	}

	return nil
}

// normalizeKey maps a configured key to the form bindings match on.
func normalizeKey(raw string) string {
	switch {
	case raw == " " || strings.EqualFold(strings.TrimSpace(raw), "space"):
		return "space"
	case utf8.RuneCountInString(raw) > 1:
		return strings.ToLower(strings.TrimSpace(raw))
	default:
		return raw
	}
}

// ThemeName returns the normalized theme.
func (c Config) ThemeName() Theme {
	theme := Theme(strings.TrimSpace(strings.ToLower(string(c.UI.Theme))))
	if theme == "" {
		return ThemeDark
	}
	return theme
}

// Save writes cfg as TOML, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
