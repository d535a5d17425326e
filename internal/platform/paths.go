package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "kanpro"

// Paths represents paths data used by this package.
type Paths struct {
	ConfigPath   string
	DataDir      string
	DBPath       string
	DownloadsDir string
}

// Options defines optional settings for configuration.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user home dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		dataDir = filepath.Join(home, ".local", "share")
	}

	env := map[string]string{
		"XDG_CONFIG_HOME":   os.Getenv("XDG_CONFIG_HOME"),
		"XDG_DATA_HOME":     os.Getenv("XDG_DATA_HOME"),
		"XDG_DOWNLOAD_DIR":  os.Getenv("XDG_DOWNLOAD_DIR"),
		"APPDATA":           os.Getenv("APPDATA"),
		"LOCALAPPDATA":      os.Getenv("LOCALAPPDATA"),
		"USERPROFILE":       os.Getenv("USERPROFILE"),
		"KANPRO_EXPORT_DIR": os.Getenv("KANPRO_EXPORT_DIR"),
	}
	paths, err := PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
	if err != nil {
		return Paths{}, err
	}
	if paths.DownloadsDir == "" {
		paths.DownloadsDir = filepath.Join(home, "Downloads")
	}
	return paths, nil
}

// PathsFor resolves paths from explicit inputs so every OS branch is testable.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	dataBase := userDataDir
	downloads := ""

	switch goos {
	case "linux":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
		if v := env["XDG_DATA_HOME"]; v != "" {
			dataBase = v
		}
		downloads = env["XDG_DOWNLOAD_DIR"]
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
		if v := env["LOCALAPPDATA"]; v != "" {
			dataBase = v
		}
		if v := env["USERPROFILE"]; v != "" {
			downloads = filepath.Join(v, "Downloads")
		}
	case "darwin":
		// Keep os.UserConfigDir defaults for macOS.
	default:
		// Fallback for other platforms.
	}
	if v := env["KANPRO_EXPORT_DIR"]; v != "" {
		downloads = v
	}

	appConfigDir := filepath.Join(configBase, appName)
	appDataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath:   filepath.Join(appConfigDir, "config.toml"),
		DataDir:      appDataDir,
		DBPath:       filepath.Join(appDataDir, appName+".db"),
		DownloadsDir: downloads,
	}, nil
}

// ResolveExportPath places a relative export path inside DownloadsDir when
// that directory exists, and leaves it relative to the working dir otherwise.
func (p Paths) ResolveExportPath(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured == "" || filepath.IsAbs(configured) || p.DownloadsDir == "" {
		return configured
	}
	info, err := os.Stat(p.DownloadsDir)
	if err != nil || !info.IsDir() {
		return configured
	}
	return filepath.Join(p.DownloadsDir, configured)
}
