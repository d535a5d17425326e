package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/kanpro/internal/config"
	"github.com/evanschultz/kanpro/internal/domain"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("KANPRO_DEV_MODE", "false")
	os.Exit(m.Run())
}

type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram drives the real model inside run() tests.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	return applyModelCmd(t, updated, cmd)
}

func applyModelCmd(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	out := model
	currentCmd := cmd
	for i := 0; i < 8 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		out = updated
		currentCmd = nextCmd
	}
	return out
}

// testEnv returns db and config paths inside a temp dir.
func testEnv(t *testing.T) (string, string, string) {
	t.Helper()
	tmp := t.TempDir()
	return tmp, filepath.Join(tmp, "kanpro.db"), filepath.Join(tmp, "missing.toml")
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(%v) error = %v", args, err)
	}
	return out.String()
}

func listBoard(t *testing.T, dbPath, cfgPath string) domain.Board {
	t.Helper()
	out := runOK(t, "--db", dbPath, "--config", cfgPath, "list", "--json")
	board, err := domain.DecodeBoard([]byte(out))
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	return board
}

func TestRunVersion(t *testing.T) {
	out := runOK(t, "--version")
	if !strings.Contains(out, version) {
		t.Fatalf("expected version output, got %q", out)
	}
}

func TestRunStartsProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program {
		return fakeProgram{}
	}

	_, dbPath, cfgPath := testEnv(t)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected seed board persisted to %s, stat error %v", dbPath, err)
	}
}

func TestRunProgramErrorIsReturned(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program {
		return fakeProgram{runErr: errors.New("tty gone")}
	}

	_, dbPath, cfgPath := testEnv(t)
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected program error, got %v", err)
	}
}

func TestRunTUIPersistsKeyboardMoves(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(model tea.Model) program {
		return scriptedProgram{
			model: model,
			runFn: func(current tea.Model) (tea.Model, error) {
				current = applyModelCmd(t, current, current.Init())
				current = applyModelMsg(t, current, tea.WindowSizeMsg{Width: 120, Height: 40})
				current = applyModelMsg(t, current, tea.KeyPressMsg{Code: 'J', Text: "J"})
				return current, nil
			},
		}
	}

	_, dbPath, cfgPath := testEnv(t)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	board := listBoard(t, dbPath, cfgPath)
	todo, ok := board.Column("todo")
	if !ok || len(todo.Tasks) != 2 || todo.Tasks[0].ID != "2" || todo.Tasks[1].ID != "1" {
		t.Fatalf("expected reorder to persist, got %#v", todo.Tasks)
	}
}

func TestRunInvalidFlag(t *testing.T) {
	err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunExportCommandWritesBoard(t *testing.T) {
	tmp, dbPath, cfgPath := testEnv(t)
	outPath := filepath.Join(tmp, "nested", "board.json")
	runOK(t, "--db", dbPath, "--config", cfgPath, "export", "--out", outPath)

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	board, err := domain.DecodeBoard(content)
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	if len(board) != 4 || board.TaskCount() != 5 {
		t.Fatalf("expected seed board export, got %d columns %d tasks", len(board), board.TaskCount())
	}
	if !strings.HasPrefix(string(content), "[\n  {") || !strings.HasSuffix(string(content), "\n") {
		t.Fatalf("expected two-space indented JSON, got %q", string(content)[:min(20, len(content))])
	}
}

func TestRunExportToStdoutAndClipboard(t *testing.T) {
	origClipboard := clipboardWrite
	t.Cleanup(func() { clipboardWrite = origClipboard })
	var copied string
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}

	_, dbPath, cfgPath := testEnv(t)
	out := runOK(t, "--db", dbPath, "--config", cfgPath, "export", "--out", "-")
	if _, err := domain.DecodeBoard([]byte(out)); err != nil {
		t.Fatalf("expected board JSON on stdout, got error %v", err)
	}

	clipOut := runOK(t, "--db", dbPath, "--config", cfgPath, "export", "--clipboard")
	if clipOut != "" {
		t.Fatalf("expected clipboard export to skip stdout, got %q", clipOut)
	}
	if copied != out {
		t.Fatal("expected clipboard to receive the same JSON as stdout")
	}

	clipboardWrite = func(string) error { return errors.New("no display") }
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--clipboard"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Fatalf("expected clipboard error, got %v", err)
	}
}

func TestRunExportDefaultsToConfiguredPath(t *testing.T) {
	tmp, dbPath, _ := testEnv(t)
	exportPath := filepath.Join(tmp, "exports", "kanban-board.json")
	cfgPath := filepath.Join(tmp, "kanpro.toml")
	cfgContent := "[export]\npath = \"" + filepath.ToSlash(exportPath) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if out := runOK(t, "--db", dbPath, "--config", cfgPath, "export"); out != "" {
		t.Fatalf("expected file export to leave stdout empty, got %q", out)
	}
	content, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if _, err := domain.DecodeBoard(content); err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
}

func TestRunImportCommandReplacesBoard(t *testing.T) {
	tmp, dbPath, cfgPath := testEnv(t)
	board := domain.Board{{
		ID:    "inbox",
		Title: "Inbox",
		Color: "#000000",
		Tasks: []domain.Task{{
			ID:        "t-1",
			Title:     "Imported",
			Priority:  domain.PriorityLow,
			Tags:      []string{},
			CreatedAt: "2025-01-01T00:00:00.000Z",
		}},
	}}
	data, err := domain.EncodeBoard(board, true)
	if err != nil {
		t.Fatalf("EncodeBoard() error = %v", err)
	}
	inPath := filepath.Join(tmp, "in.json")
	if err := os.WriteFile(inPath, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	runOK(t, "--db", dbPath, "--config", cfgPath, "import", "--in", inPath)
	got := listBoard(t, dbPath, cfgPath)
	if len(got) != 1 || got[0].ID != "inbox" || got[0].Tasks[0].Title != "Imported" {
		t.Fatalf("unexpected imported board %#v", got)
	}
}

func TestRunImportRejectsInvalidFiles(t *testing.T) {
	tmp, dbPath, cfgPath := testEnv(t)
	notList := filepath.Join(tmp, "object.json")
	if err := os.WriteFile(notList, []byte(`{"not":"array"}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", notList}, io.Discard, io.Discard)
	if err == nil || !errors.Is(err, domain.ErrNotAList) || !strings.Contains(err.Error(), "invalid file format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
	if got := listBoard(t, dbPath, cfgPath); got.TaskCount() != 5 {
		t.Fatalf("expected board unchanged after rejected import, got %d tasks", got.TaskCount())
	}

	err = run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "--in is required") {
		t.Fatalf("expected missing --in error, got %v", err)
	}
	err = run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", filepath.Join(tmp, "nope.json")}, io.Discard, io.Discard)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestRunAddMoveAndStats(t *testing.T) {
	_, dbPath, cfgPath := testEnv(t)
	id := strings.TrimSpace(runOK(t, "--db", dbPath, "--config", cfgPath, "add", "--title", "X", "--priority", "high", "--tags", "a, b"))
	if id == "" {
		t.Fatal("expected new task id on stdout")
	}

	var stats domain.Stats
	out := runOK(t, "--db", dbPath, "--config", cfgPath, "stats", "--json")
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if stats.TotalTasks != 6 || stats.HighPriorityTasks != 3 {
		t.Fatalf("unexpected stats after add %#v", stats)
	}

	runOK(t, "--db", dbPath, "--config", cfgPath, "move", "--from", "todo", "--from-index", "2", "--to", "done", "--to-index", "0")
	board := listBoard(t, dbPath, cfgPath)
	done, _ := board.Column("done")
	if len(done.Tasks) != 2 || done.Tasks[0].ID != id {
		t.Fatalf("expected new task at top of done, got %#v", done.Tasks)
	}

	text := runOK(t, "--db", dbPath, "--config", cfgPath, "stats")
	if !strings.Contains(text, "completed: 2") {
		t.Fatalf("expected completed count in text stats, got %q", text)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "move", "--from", "nope"}, io.Discard, io.Discard)
	if err == nil || !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected column not found error, got %v", err)
	}
}

func TestRunAddRejectsInvalidInput(t *testing.T) {
	_, dbPath, cfgPath := testEnv(t)
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "add", "--title", "   "}, io.Discard, io.Discard)
	if err == nil || !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected invalid title error, got %v", err)
	}
	err = run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "add", "--title", "ok", "--priority", "urgent"}, io.Discard, io.Discard)
	if err == nil || !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("expected invalid priority error, got %v", err)
	}
	if got := listBoard(t, dbPath, cfgPath); got.TaskCount() != 5 {
		t.Fatalf("expected no tasks added, got %d", got.TaskCount())
	}
}

func TestRunAddColumnAndList(t *testing.T) {
	_, dbPath, cfgPath := testEnv(t)
	id := strings.TrimSpace(runOK(t, "--db", dbPath, "--config", cfgPath, "add-column", "--title", "Blocked"))
	board := listBoard(t, dbPath, cfgPath)
	if len(board) != 5 || board[4].ID != id || board[4].Color != config.DefaultColumnColor {
		t.Fatalf("unexpected column %#v", board[len(board)-1])
	}

	out := runOK(t, "--db", dbPath, "--config", cfgPath, "list", "--priority", "high")
	if !strings.Contains(out, "Design Homepage") || !strings.Contains(out, "User Authentication") {
		t.Fatalf("expected high priority tasks listed, got %q", out)
	}
	if strings.Contains(out, "Setup Database") {
		t.Fatalf("expected medium task filtered out, got %q", out)
	}
	if !strings.Contains(out, "Blocked") {
		t.Fatalf("expected empty columns kept in listing, got %q", out)
	}

	out = runOK(t, "--db", dbPath, "--config", cfgPath, "list", "--search", "PAYMENT")
	if !strings.Contains(out, "Code Review") || strings.Contains(out, "Project Setup") {
		t.Fatalf("unexpected search listing %q", out)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "list", "--priority", "urgent"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected invalid priority filter error")
	}
}

func TestRunResetRestoresSeed(t *testing.T) {
	_, dbPath, cfgPath := testEnv(t)
	runOK(t, "--db", dbPath, "--config", cfgPath, "add", "--title", "temp")
	if got := listBoard(t, dbPath, cfgPath); got.TaskCount() != 6 {
		t.Fatalf("expected 6 tasks before reset, got %d", got.TaskCount())
	}
	out := runOK(t, "--db", dbPath, "--config", cfgPath, "reset")
	if !strings.Contains(out, "board reset") {
		t.Fatalf("unexpected reset output %q", out)
	}
	if got := listBoard(t, dbPath, cfgPath); got.TaskCount() != 5 {
		t.Fatalf("expected seed board after reset, got %d", got.TaskCount())
	}
}

func TestRunUsesConfiguredStorageKeyAndDoneColumn(t *testing.T) {
	tmp, dbPath, _ := testEnv(t)
	cfgPath := filepath.Join(tmp, "kanpro.toml")
	content := "[storage]\nkey = \"other-board\"\n\n[board]\ndone_column_id = \"review\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	var stats domain.Stats
	out := runOK(t, "--db", dbPath, "--config", cfgPath, "stats", "--json")
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if stats.CompletedTasks != 1 {
		t.Fatalf("expected review column counted as done, got %#v", stats)
	}
	paths := runOK(t, "--db", dbPath, "--config", cfgPath, "paths")
	if strings.Contains(paths, "stored_at: never") {
		t.Fatalf("expected board stored under configured key, got %q", paths)
	}
}

func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	cfgContent := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(tmp, "ignored.db")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("KANPRO_CONFIG", cfgPath)
	t.Setenv("KANPRO_DB_PATH", dbPath)

	runOK(t, "export", "--out", filepath.Join(tmp, "out.json"))
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "ignored.db")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected config db path to be overridden, stat error %v", err)
	}
}

func TestRunConfigDatabasePathUsedWithoutOverride(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "from-config.db")
	cfgPath := filepath.Join(tmp, "kanpro.toml")
	cfgContent := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	runOK(t, "--config", cfgPath, "stats")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at configured path, stat error %v", err)
	}
}

func TestRunPathsCommand(t *testing.T) {
	output := runOK(t, "--app", "kanx", "--dev", "paths")
	if !strings.Contains(output, "app: kanx") {
		t.Fatalf("expected app name in paths output, got %q", output)
	}
	if !strings.Contains(output, "dev_mode: true") {
		t.Fatalf("expected dev mode in paths output, got %q", output)
	}
	if !strings.Contains(output, "kanx-dev") {
		t.Fatalf("expected dev app dir in paths output, got %q", output)
	}

	_, dbPath, cfgPath := testEnv(t)
	output = runOK(t, "--db", dbPath, "--config", cfgPath, "paths")
	if !strings.Contains(output, "stored_at: never") {
		t.Fatalf("expected no stored board yet, got %q", output)
	}
	if _, err := os.Stat(dbPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected paths to leave the db uncreated, stat error %v", err)
	}
}

func TestRunPathsInitWritesDefaultConfigOnce(t *testing.T) {
	tmp, dbPath, _ := testEnv(t)
	cfgPath := filepath.Join(tmp, "conf", "kanpro.toml")

	out := runOK(t, "--db", dbPath, "--config", cfgPath, "paths", "--init")
	if !strings.Contains(out, "config_written: "+cfgPath) {
		t.Fatalf("expected config written notice, got %q", out)
	}
	cfg, err := config.Load(cfgPath, config.Default("/unused.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Key != config.DefaultStorageKey || cfg.Keys.Filter != "f" {
		t.Fatalf("unexpected written config %#v", cfg)
	}

	custom := []byte("[ui]\ntheme = \"light\"\n")
	if err := os.WriteFile(cfgPath, custom, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	out = runOK(t, "--db", dbPath, "--config", cfgPath, "paths", "--init")
	if strings.Contains(out, "config_written") {
		t.Fatalf("expected existing config left alone, got %q", out)
	}
	content, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != string(custom) {
		t.Fatalf("expected config unchanged, got %q", string(content))
	}
}

func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	tmp, dbPath, _ := testEnv(t)
	cfgPath := filepath.Join(tmp, "kanpro.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "stats"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected config load error, got %v", err)
	}
}

func TestRunDevModeWritesLogsToWorkspaceFileOnly(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, "go.mod"), []byte("module example.com/ws\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Chdir(workspace)
	dbPath := filepath.Join(workspace, "kanpro.db")
	cfgPath := filepath.Join(workspace, "config.toml")

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--db", dbPath, "--config", cfgPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".kanpro", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected TUI lifecycle entries in log file, got %q", string(content))
	}
}

func TestRunCommandLogsToConsole(t *testing.T) {
	_, dbPath, cfgPath := testEnv(t)
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "stats"}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stderr.String(), "board loaded") {
		t.Fatalf("expected console log output, got %q", stderr.String())
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("KANPRO_BOOL_TEST", "true")
	got, ok := parseBoolEnv("KANPRO_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}

	t.Setenv("KANPRO_BOOL_TEST", "not-bool")
	if _, ok = parseBoolEnv("KANPRO_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}

func TestNewIDIsUniqueUUID(t *testing.T) {
	a, b := newID(), newID()
	if len(a) != 36 || a == b {
		t.Fatalf("expected distinct UUIDs, got %q and %q", a, b)
	}
}

func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "kanpro")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "kanpro")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	got, err := devLogFilePath("", "kan pro", time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	want := filepath.Join(root, ".kanpro", "log", "kan-pro-20260222.log")
	if normalize(got) != normalize(want) {
		t.Fatalf("expected log path %q, got %q", want, got)
	}
}

func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"kanpro":    "kanpro",
		" a/b:c ":   "a-b-c",
		"":          "kanpro",
		"///":       "kanpro",
		"dev board": "dev-board",
	}
	for input, want := range cases {
		if got := sanitizeLogFileStem(input); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/kanpro.db").Logging

	logger, err := newRuntimeLogger(&console, "kanpro", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.DevLogPath() != "" {
		t.Fatal("expected no dev log outside dev mode")
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.Debug("hidden below info")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include before/after, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if strings.Contains(out, "hidden below info") {
		t.Fatalf("expected debug filtered at info level, got %q", out)
	}
}
