package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/kanpro/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanpro/internal/app"
	"github.com/evanschultz/kanpro/internal/config"
	"github.com/evanschultz/kanpro/internal/domain"
	"github.com/evanschultz/kanpro/internal/platform"
	"github.com/evanschultz/kanpro/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it through fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetIn(os.Stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// runtime is the wired application for one command invocation.
type runtime struct {
	cfg    config.Config
	paths  platform.Paths
	logger *runtimeLogger
	repo   *sqlite.Repository
	svc    *app.Service
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{appName: platform.DefaultAppName}
	flags.devMode = version == "dev"
	if envDev, ok := parseBoolEnv("KANPRO_DEV_MODE"); ok {
		flags.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KANPRO_APP_NAME")); envApp != "" {
		flags.appName = envApp
	}

	root := &cobra.Command{
		Use:           "kanpro",
		Short:         "Local-first kanban board for the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags, stderr)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config TOML")
	pf.StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	pf.StringVar(&flags.appName, "app", flags.appName, "application name for config/data path resolution")
	pf.BoolVar(&flags.devMode, "dev", flags.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newExportCommand(flags, stdout, stderr),
		newImportCommand(flags, stderr),
		newResetCommand(flags, stdout, stderr),
		newStatsCommand(flags, stdout, stderr),
		newListCommand(flags, stdout, stderr),
		newAddCommand(flags, stdout, stderr),
		newAddColumnCommand(flags, stdout, stderr),
		newMoveCommand(flags, stderr),
		newPathsCommand(flags, stdout),
	)
	return root
}

// resolvePaths applies flag, env and platform defaults for config and db paths.
// dbOverridden reports whether the db path came from a flag or env var and
// should win over the config file.
func resolvePaths(flags *globalFlags) (paths platform.Paths, configPath, dbPath string, dbOverridden bool, err error) {
	paths, err = platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return platform.Paths{}, "", "", false, err
	}
	configPath = strings.TrimSpace(flags.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KANPRO_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath = strings.TrimSpace(flags.dbPath)
	dbOverridden = dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("KANPRO_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return paths, configPath, dbPath, dbOverridden, nil
}

// loadConfig reads the config file and applies a db path override.
func loadConfig(configPath, dbPath string, dbOverridden bool) (config.Config, error) {
	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// bootstrap loads config, opens storage and restores the board.
func bootstrap(ctx context.Context, flags *globalFlags, stderr io.Writer, command string, quietConsole bool) (*runtime, error) {
	paths, configPath, dbPath, dbOverridden, err := resolvePaths(flags)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(configPath, dbPath, dbOverridden)
	if err != nil {
		return nil, err
	}
	dbPath = cfg.Database.Path

	logger, err := newRuntimeLogger(stderr, flags.appName, flags.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if quietConsole {
		// Runtime logs stay in the dev-file sink while the board is on screen.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", dbPath, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	logger.Debug("sqlite repository ready", "db_path", dbPath)

	svc := app.NewService(repo, newID, time.Now, app.ServiceConfig{
		StorageKey:         cfg.Storage.Key,
		DoneColumnID:       cfg.Board.DoneColumnID,
		DefaultColumnColor: cfg.Board.DefaultColumnColor,
		Logger:             logger,
	})
	report := svc.Load(ctx)
	if report.Err != nil {
		logger.Warn("stored board unreadable, using seed", "key", cfg.Storage.Key, "err", report.Err)
	}
	logger.Info("board loaded", "source", report.Source, "columns", len(svc.Board()))

	return &runtime{
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		repo:   repo,
		svc:    svc,
	}, nil
}

// Close releases storage and log sinks.
func (r *runtime) Close() {
	if r == nil {
		return
	}
	if err := r.repo.Close(); err != nil {
		r.logger.Warn("sqlite close failed", "db_path", r.cfg.Database.Path, "err", err)
	}
	if err := r.logger.Close(); err != nil && r.logger.consoleActive() {
		r.logger.Warn("close runtime log sink failed", "err", err)
	}
}

// withRuntime wires the application around one non-interactive command.
func withRuntime(ctx context.Context, flags *globalFlags, stderr io.Writer, command string, fn func(*runtime) error) error {
	rt, err := bootstrap(ctx, flags, stderr, command, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Debug("command flow start", "command", command)
	if err := fn(rt); err != nil {
		rt.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	rt.logger.Debug("command flow complete", "command", command)
	return nil
}

func runTUI(ctx context.Context, flags *globalFlags, stderr io.Writer) error {
	rt, err := bootstrap(ctx, flags, stderr, "tui", true)
	if err != nil {
		return err
	}
	defer rt.Close()

	exportPath := rt.paths.ResolveExportPath(rt.cfg.Export.Path)
	m := tui.NewModel(
		rt.svc,
		tui.WithTheme(tui.Theme(rt.cfg.ThemeName())),
		tui.WithStatsPanel(rt.cfg.UI.ShowStats),
		tui.WithDescriptions(rt.cfg.UI.ShowDescription),
		tui.WithKeyConfig(tui.KeyConfig{
			Grab:   rt.cfg.Keys.Grab,
			Search: rt.cfg.Keys.Search,
			Filter: rt.cfg.Keys.Filter,
		}),
		tui.WithExportPath(exportPath),
		tui.WithClipboard(clipboardWrite),
	)
	rt.logger.Info("starting tui program loop", "export_path", exportPath)
	if _, err := programFactory(m).Run(); err != nil {
		rt.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	rt.logger.Info("command flow complete", "command", "tui")
	return nil
}

func newExportCommand(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		outPath string
		toClip  bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as indented JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, stderr, "export", func(rt *runtime) error {
				data, err := rt.svc.ExportBoard(cmd.Context())
				if err != nil {
					return err
				}
				if toClip {
					if err := clipboardWrite(string(data)); err != nil {
						return fmt.Errorf("copy to clipboard: %w", err)
					}
					rt.logger.Info("board copied to clipboard", "bytes", len(data))
					if !cmd.Flags().Changed("out") {
						return nil
					}
				}
				target := strings.TrimSpace(outPath)
				if target == "" {
					target = rt.paths.ResolveExportPath(rt.cfg.Export.Path)
				}
				if target == "-" {
					if _, err := stdout.Write(data); err != nil {
						return fmt.Errorf("write board to stdout: %w", err)
					}
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(target, data, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				rt.logger.Info("board exported", "path", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path ('-' for stdout, default from [export] path)")
	cmd.Flags().BoolVar(&toClip, "clipboard", false, "copy the board JSON to the system clipboard")
	return cmd
}

func newImportCommand(flags *globalFlags, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			return withRuntime(cmd.Context(), flags, stderr, "import", func(rt *runtime) error {
				content, err := os.ReadFile(inPath)
				if err != nil {
					return fmt.Errorf("read import file: %w", err)
				}
				if err := rt.svc.ImportBoard(cmd.Context(), content); err != nil {
					if errors.Is(err, domain.ErrNotAList) {
						return fmt.Errorf("invalid file format: %w", err)
					}
					return fmt.Errorf("import board: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input board JSON file")
	return cmd
}

func newResetCommand(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear stored data and restore the sample board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, stderr, "reset", func(rt *runtime) error {
				if err := rt.svc.Reset(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(stdout, "board reset")
				return nil
			})
		},
	}
}

func newStatsCommand(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, stderr, "stats", func(rt *runtime) error {
				stats := rt.svc.Stats()
				if asJSON {
					return writeJSON(stdout, stats)
				}
				_, _ = fmt.Fprintf(stdout, "total: %d\n", stats.TotalTasks)
				_, _ = fmt.Fprintf(stdout, "completed: %d\n", stats.CompletedTasks)
				_, _ = fmt.Fprintf(stdout, "high_priority: %d\n", stats.HighPriorityTasks)
				_, _ = fmt.Fprintf(stdout, "overdue: %d\n", stats.OverdueTasks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newListCommand(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		search   string
		priority string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List columns and tasks, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := domain.ParsePriorityFilter(priority)
			if err != nil {
				return fmt.Errorf("parse --priority: %w", err)
			}
			return withRuntime(cmd.Context(), flags, stderr, "list", func(rt *runtime) error {
				board := rt.svc.FilteredBoard(search, filter)
				if asJSON {
					return writeJSON(stdout, board)
				}
				now := time.Now()
				for _, column := range board {
					_, _ = fmt.Fprintf(stdout, "%s [%s] (%d)\n", column.Title, column.ID, len(column.Tasks))
					for idx, task := range column.Tasks {
						line := fmt.Sprintf("  %d. %s (%s, %s)", idx, task.Title, task.Priority, task.ID)
						if task.Deadline != "" {
							line += " due " + task.Deadline
							if task.IsOverdue(now) {
								line += " OVERDUE"
							}
						}
						if len(task.Tags) > 0 {
							line += " #" + strings.Join(task.Tags, " #")
						}
						_, _ = fmt.Fprintln(stdout, line)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive match on title, description and tags")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(domain.PriorityFilterAll), "all, high, medium or low")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newAddCommand(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		columnID string
		draft    app.TaskDraft
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a task to a column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, stderr, "add", func(rt *runtime) error {
				task, err := rt.svc.AddTask(cmd.Context(), columnID, draft)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(stdout, task.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&columnID, "column", "c", "todo", "target column id")
	f.StringVarP(&draft.Title, "title", "t", "", "task title")
	f.StringVarP(&draft.Description, "description", "d", "", "task description")
	f.StringVarP(&draft.Priority, "priority", "p", string(domain.PriorityMedium), "low, medium or high")
	f.StringVar(&draft.Deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	f.StringVar(&draft.Tags, "tags", "", "comma-separated tags")
	return cmd
}

func newAddColumnCommand(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var draft app.ColumnDraft
	cmd := &cobra.Command{
		Use:   "add-column",
		Short: "Append an empty column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, stderr, "add-column", func(rt *runtime) error {
				column, err := rt.svc.AddColumn(cmd.Context(), draft)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(stdout, column.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "column title")
	cmd.Flags().StringVar(&draft.Color, "color", "", "hex color (defaults to the configured column color)")
	return cmd
}

func newMoveCommand(flags *globalFlags, stderr io.Writer) *cobra.Command {
	var (
		from, to           string
		fromIndex, toIndex int
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a task between positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("to") {
				to = from
			}
			return withRuntime(cmd.Context(), flags, stderr, "move", func(rt *runtime) error {
				return rt.svc.HandleDrop(cmd.Context(), app.DropEvent{
					Source:      domain.Location{ColumnID: from, Index: fromIndex},
					Destination: &domain.Location{ColumnID: to, Index: toIndex},
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "source column id")
	f.IntVar(&fromIndex, "from-index", 0, "source task index")
	f.StringVar(&to, "to", "", "destination column id (defaults to --from)")
	f.IntVar(&toIndex, "to-index", 0, "destination index after removal")
	return cmd
}

func newPathsCommand(flags *globalFlags, stdout io.Writer) *cobra.Command {
	var initConfig bool
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and export paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, dbPath, dbOverridden, err := resolvePaths(flags)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath, dbPath, dbOverridden)
			if err != nil {
				return err
			}
			dbPath = cfg.Database.Path
			if initConfig {
				written, err := writeDefaultConfig(configPath, paths.DBPath)
				if err != nil {
					return err
				}
				if written {
					_, _ = fmt.Fprintf(stdout, "config_written: %s\n", configPath)
				}
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", dbPath)
			_, _ = fmt.Fprintf(stdout, "export: %s\n", paths.ResolveExportPath(cfg.Export.Path))
			_, _ = fmt.Fprintf(stdout, "stored_at: %s\n", storedAt(cmd.Context(), dbPath, cfg.Storage.Key))
			return nil
		},
	}
	cmd.Flags().BoolVar(&initConfig, "init", false, "write a default config file when none exists")
	return cmd
}

// writeDefaultConfig saves the default config to path unless a file is already there.
func writeDefaultConfig(path, dbPath string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config %q: %w", path, err)
	}
	if err := config.Save(path, config.Default(dbPath)); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}

// storedAt reports when the board was last persisted without creating a database.
func storedAt(ctx context.Context, dbPath, key string) string {
	if _, err := os.Stat(dbPath); err != nil {
		return "never"
	}
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		return "unavailable"
	}
	defer func() { _ = repo.Close() }()
	at, err := repo.UpdatedAt(ctx, key)
	if err != nil {
		return "never"
	}
	return at.Format(time.RFC3339)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// newID returns a time-ordered UUIDv7, falling back to a random v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// parseBoolEnv parses a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
