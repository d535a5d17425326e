package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// KeyConfig holds user overrides for configurable bindings.
type KeyConfig struct {
	Grab   string
	Search string
	Filter string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	grab          key.Binding
	drop          key.Binding
	moveTaskLeft  key.Binding
	moveTaskRight key.Binding
	reorderUp     key.Binding
	reorderDown   key.Binding
	addTask       key.Binding
	addColumn     key.Binding
	taskInfo      key.Binding
	editTask      key.Binding
	deleteTask    key.Binding
	search        key.Binding
	filter        key.Binding
	toggleStats   key.Binding
	toggleTheme   key.Binding
	exportFile    key.Binding
	copyBoard     key.Binding
	importFile    key.Binding
	reset         key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		grab:          key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab task")),
		drop:          key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space/enter", "drop")),
		moveTaskLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		reorderUp:     key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "reorder up")),
		reorderDown:   key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "reorder down")),
		addTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		addColumn:     key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "new column")),
		taskInfo:      key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		editTask:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		filter:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "priority filter")),
		toggleStats:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle stats")),
		toggleTheme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		exportFile:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export file")),
		copyBoard:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy json")),
		importFile:    key.NewBinding(key.WithKeys("I", "shift+i"), key.WithHelp("I", "import file")),
		reset:         key.NewBinding(key.WithKeys("R", "shift+r"), key.WithHelp("R", "reset board")),
	}
}

// applyConfig applies configured key overrides.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.grab, cfg.Grab, " ", "grab task")
	configureBinding(&k.search, cfg.Search, "/", "search")
	configureBinding(&k.filter, cfg.Filter, "f", "priority filter")
}

// configureBinding replaces one binding's keys and help text.
func configureBinding(binding *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	binding.SetKeys(keys...)
	binding.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := raw
	if strings.TrimSpace(value) == "" && value != " " {
		value = fallback
	}
	if value == " " || strings.EqualFold(strings.TrimSpace(value), "space") {
		return []string{" ", "space"}, "space"
	}
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.grab, k.taskInfo, k.editTask, k.search, k.filter, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.addColumn, k.taskInfo, k.editTask, k.deleteTask, k.search, k.filter, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.grab, k.drop, k.moveTaskLeft, k.moveTaskRight, k.reorderUp, k.reorderDown},
		{k.toggleStats, k.toggleTheme, k.exportFile, k.copyBoard, k.importFile, k.reset},
	}
}
