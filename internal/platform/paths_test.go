package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsForLinuxWithXDG verifies behavior for the covered scenario.
func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME":  "/xdg/config",
		"XDG_DATA_HOME":    "/xdg/data",
		"XDG_DOWNLOAD_DIR": "/xdg/downloads",
	}, "/fallback/config", "/fallback/data", "kanpro")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/xdg/config", "kanpro", "config.toml")
	wantDB := filepath.Join("/xdg/data", "kanpro", "kanpro.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
	if p.DownloadsDir != "/xdg/downloads" {
		t.Fatalf("unexpected downloads dir %q", p.DownloadsDir)
	}
}

func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA":      `C:\Users\me\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
		"USERPROFILE":  `C:\Users\me`,
	}, `C:\fallback\config`, `C:\fallback\data`, "kanpro")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}

	wantConfig := filepath.Join(`C:\Users\me\AppData\Roaming`, "kanpro", "config.toml")
	wantDB := filepath.Join(`C:\Users\me\AppData\Local`, "kanpro", "kanpro.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
	if p.DownloadsDir != filepath.Join(`C:\Users\me`, "Downloads") {
		t.Fatalf("unexpected downloads dir %q", p.DownloadsDir)
	}
}

func TestPathsForEmptyDirsFails(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "kanpro"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/cfg", "/tmp/data", " "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestPathsForDarwinFallback verifies behavior for the covered scenario.
func TestPathsForDarwinFallback(t *testing.T) {
	p, err := PathsFor("darwin", map[string]string{
		"XDG_CONFIG_HOME": "/ignored",
		"XDG_DATA_HOME":   "/ignored",
	}, "/Users/me/Library/Application Support", "/Users/me/Library/Application Support", "kanpro")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/Users/me/Library/Application Support", "kanpro", "config.toml")
	wantDB := filepath.Join("/Users/me/Library/Application Support", "kanpro", "kanpro.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

func TestPathsForExportDirOverride(t *testing.T) {
	p, err := PathsFor("freebsd", map[string]string{"KANPRO_EXPORT_DIR": "/exports"}, "/cfg", "/data", "kanpro")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if p.DataDir != filepath.Join("/data", "kanpro") {
		t.Fatalf("unexpected data dir %q", p.DataDir)
	}
	if p.DownloadsDir != "/exports" {
		t.Fatalf("unexpected downloads dir %q", p.DownloadsDir)
	}
}

func TestResolveExportPath(t *testing.T) {
	dir := t.TempDir()
	p := Paths{DownloadsDir: dir}
	if got := p.ResolveExportPath("kanban-board.json"); got != filepath.Join(dir, "kanban-board.json") {
		t.Fatalf("unexpected resolved path %q", got)
	}
	abs := filepath.Join(dir, "elsewhere.json")
	if got := p.ResolveExportPath(abs); got != abs {
		t.Fatalf("expected absolute path unchanged, got %q", got)
	}
	missing := Paths{DownloadsDir: filepath.Join(dir, "missing")}
	if got := missing.ResolveExportPath("kanban-board.json"); got != "kanban-board.json" {
		t.Fatalf("expected relative path when downloads dir is missing, got %q", got)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies behavior for the covered scenario.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "kanpro", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "kanpro-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "kanpro-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
	if p.DownloadsDir == "" {
		t.Fatal("expected downloads dir fallback")
	}
}
