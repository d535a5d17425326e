package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/kanpro/internal/app"
	"github.com/evanschultz/kanpro/internal/domain"
)

// Service is the board state the model reads and mutates.
type Service interface {
	Revision() uint64
	Health() error
	Stats() domain.Stats
	FilteredBoard(string, domain.PriorityFilter) domain.Board
	HandleDrop(context.Context, app.DropEvent) error
	AddTask(context.Context, string, app.TaskDraft) (domain.Task, error)
	UpdateTask(context.Context, domain.Task) error
	DeleteTask(context.Context, string, string) error
	AddColumn(context.Context, app.ColumnDraft) (domain.Column, error)
	ExportBoard(context.Context) ([]byte, error)
	ImportBoard(context.Context, []byte) error
	Reset(context.Context) error
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeDrag
	modeSearch
	modeAddTask
	modeEditTask
	modeAddColumn
	modeTaskInfo
	modeImport
	modeConfirmReset
	modeAlert
)

// task-form field indexes used throughout keyboard/update logic.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldPriority
	taskFieldDeadline
	taskFieldTags
)

const (
	columnFieldTitle = iota
	columnFieldColor
)

// priorityOptions stores a package-level helper value.
var priorityOptions = []domain.Priority{
	domain.PriorityLow,
	domain.PriorityMedium,
	domain.PriorityHigh,
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// dragState tracks a grabbed task and where it would land.
type dragState struct {
	taskID string
	title  string
	source domain.Location
	target domain.Location
}

// Model is the Bubble Tea board model.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int

	status string
	help   help.Model
	keys   keyMap

	board    domain.Board
	stats    domain.Stats
	revision uint64
	health   error

	selectedColumn int
	selectedTask   int

	mode           inputMode
	drag           dragState
	searchInput    textinput.Model
	searchQuery    string
	priorityFilter domain.PriorityFilter

	formInputs    []textinput.Model
	formFocus     int
	priorityIdx   int
	formColumnID  string
	editingTaskID string

	importInput textinput.Model
	alert       string
	infoTaskID  string

	pendingFocusTaskID   string
	pendingFocusColumnID string

	// Moves commit one at a time in key order; the board shows them before they land.
	moveInFlight bool
	pendingMoves []app.DropEvent

	theme           Theme
	showStats       bool
	showDescription bool
	exportPath      string

	clipboard ClipboardWriter
	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte, os.FileMode) error
	now       func() time.Time
	markdown  *markdownRenderer
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	board    domain.Board
	stats    domain.Stats
	revision uint64
	health   error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err           error
	status        string
	reload        bool
	focusTaskID   string
	focusColumnID string
	alert         string
	moveDone      bool
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:             svc,
		status:          "loading...",
		help:            h,
		keys:            newKeyMap(),
		priorityFilter:  domain.PriorityFilterAll,
		searchInput:     newModalInput("/ ", "title, description, tags", "", 120),
		importInput:     newModalInput("file: ", "path to a board .json export", "", 512),
		theme:           ThemeDark,
		showStats:       true,
		showDescription: true,
		exportPath:      app.DefaultExportFileName,
		clipboard:       clipboard.WriteAll,
		readFile:        os.ReadFile,
		writeFile:       os.WriteFile,
		now:             time.Now,
		markdown:        &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.revision = msg.revision
		m.health = msg.health
		if msg.health != nil {
			m.board = nil
			m.mode = modeNone
			m.status = "stored board is corrupt"
			return m, nil
		}
		m.stats = msg.stats
		if m.moveInFlight {
			return m, nil
		}
		m.board = msg.board
		if m.pendingFocusColumnID != "" {
			if idx := m.board.ColumnIndex(m.pendingFocusColumnID); idx >= 0 {
				m.selectedColumn = idx
				m.selectedTask = 0
			}
			m.pendingFocusColumnID = ""
		}
		m.clampSelections()
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.moveDone {
			m.moveInFlight = false
			if len(m.pendingMoves) > 0 {
				next := m.pendingMoves[0]
				m.pendingMoves = m.pendingMoves[1:]
				m.moveInFlight = true
				if msg.status != "" {
					m.status = msg.status
				}
				return m, m.dropCmd(next)
			}
		}
		if msg.alert != "" {
			m.mode = modeAlert
			m.alert = msg.alert
			m.status = "import failed"
			return m, nil
		}
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			if msg.reload {
				return m, m.loadData
			}
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.focusColumnID != "" {
			m.pendingFocusColumnID = msg.focusColumnID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.health != nil {
			return m.handleRecoveryKey(msg)
		}
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	if err := m.svc.Health(); err != nil {
		return loadedMsg{health: err, revision: m.svc.Revision()}
	}
	return loadedMsg{
		board:    m.svc.FilteredBoard(m.searchQuery, m.priorityFilter),
		stats:    m.svc.Stats(),
		revision: m.svc.Revision(),
	}
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

func (m Model) handleRecoveryKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reset), msg.String() == "enter":
		m.status = "clearing stored board..."
		return m, m.resetCmd()
	case key.Matches(msg, m.keys.reload):
		return m, m.loadData
	default:
		return m, nil
	}
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		if m.filtersActive() {
			m.searchQuery = ""
			m.searchInput.SetValue("")
			m.priorityFilter = domain.PriorityFilterAll
			m.status = "filters cleared"
			return m, m.loadData
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.board)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		tasks := m.currentColumnTasks()
		if len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.grab):
		return m.startDrag()
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTaskToColumn(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTaskToColumn(1)
	case key.Matches(msg, m.keys.reorderUp):
		return m.reorderSelectedTask(-1)
	case key.Matches(msg, m.keys.reorderDown):
		return m.reorderSelectedTask(1)
	case key.Matches(msg, m.keys.addTask):
		m.help.ShowAll = false
		return m, m.startTaskForm(nil)
	case key.Matches(msg, m.keys.addColumn):
		m.help.ShowAll = false
		return m, m.startColumnForm()
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTask0()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTask0()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		return m.deleteSelectedTask()
	case key.Matches(msg, m.keys.search):
		return m, m.startSearchMode()
	case key.Matches(msg, m.keys.filter):
		m.priorityFilter = m.priorityFilter.Next()
		m.status = "priority: " + string(m.priorityFilter)
		return m, m.loadData
	case key.Matches(msg, m.keys.toggleStats):
		m.showStats = !m.showStats
		return m, nil
	case key.Matches(msg, m.keys.toggleTheme):
		if m.theme == ThemeDark {
			m.theme = ThemeLight
		} else {
			m.theme = ThemeDark
		}
		m.status = "theme: " + string(m.theme)
		return m, nil
	case key.Matches(msg, m.keys.exportFile):
		m.status = "exporting..."
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.copyBoard):
		return m, m.copyCmd()
	case key.Matches(msg, m.keys.importFile):
		return m, m.startImport()
	case key.Matches(msg, m.keys.reset):
		m.mode = modeConfirmReset
		m.status = "confirm reset"
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDrag:
		return m.handleDragKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeAddTask, modeEditTask, modeAddColumn:
		return m.handleFormKey(msg)
	case modeTaskInfo:
		return m.handleTaskInfoKey(msg)
	case modeImport:
		return m.handleImportKey(msg)
	case modeConfirmReset:
		switch msg.String() {
		case "y", "Y", "enter":
			m.mode = modeNone
			m.status = "resetting..."
			return m, m.resetCmd()
		case "n", "N", "esc":
			m.mode = modeNone
			m.status = "reset cancelled"
		}
		return m, nil
	case modeAlert:
		switch msg.String() {
		case "enter", "esc", "space", " ":
			m.mode = modeNone
			m.alert = ""
			m.status = "ready"
		}
		return m, nil
	default:
		m.mode = modeNone
		return m, nil
	}
}

// startDrag grabs the selected task. Filtered indexes differ from board
// indexes, so grabbing requires an unfiltered view.
func (m Model) startDrag() (tea.Model, tea.Cmd) {
	if m.filtersActive() {
		m.status = "clear search and filter to move tasks"
		return m, nil
	}
	task, loc, ok := m.selectedTaskLocation()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	m.mode = modeDrag
	m.drag = dragState{taskID: task.ID, title: task.Title, source: loc, target: loc}
	m.status = "dragging " + truncate(task.Title, 32)
	return m, nil
}

func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc":
		m.mode = modeNone
		m.status = "drag cancelled"
		return m.queueMove(app.DropEvent{TaskID: m.drag.taskID, Source: m.drag.source})
	case key.Matches(msg, m.keys.drop):
		m.mode = modeNone
		dest := m.drag.target
		return m.queueMove(app.DropEvent{TaskID: m.drag.taskID, Source: m.drag.source, Destination: &dest})
	case key.Matches(msg, m.keys.moveLeft):
		m.retargetDrag(-1)
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.retargetDrag(1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.drag.target.Index > 0 {
			m.drag.target.Index--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		colIdx := m.board.ColumnIndex(m.drag.target.ColumnID)
		if m.drag.target.Index < m.dropSlots(colIdx) {
			m.drag.target.Index++
		}
		return m, nil
	default:
		return m, nil
	}
}

// retargetDrag moves the drop cursor to a neighbouring column.
func (m *Model) retargetDrag(delta int) {
	colIdx := m.board.ColumnIndex(m.drag.target.ColumnID) + delta
	if colIdx < 0 || colIdx >= len(m.board) {
		return
	}
	m.drag.target.ColumnID = m.board[colIdx].ID
	m.drag.target.Index = clamp(m.drag.target.Index, 0, m.dropSlots(colIdx))
	m.selectedColumn = colIdx
}

// dropSlots returns the largest valid drop index for a column, accounting for
// the dragged task leaving its source column.
func (m Model) dropSlots(colIdx int) int {
	if colIdx < 0 || colIdx >= len(m.board) {
		return 0
	}
	slots := len(m.board[colIdx].Tasks)
	if m.board[colIdx].ID == m.drag.source.ColumnID {
		slots--
	}
	return max(0, slots)
}

// queueMove shows a drop on the local board right away and hands it to the
// service once earlier moves have committed.
func (m Model) queueMove(event app.DropEvent) (tea.Model, tea.Cmd) {
	if event.Destination != nil {
		if next, err := m.board.MoveTask(event.Source, *event.Destination); err == nil {
			m.board = next
			m.focusTaskByID(event.TaskID)
		}
	}
	if m.moveInFlight {
		m.pendingMoves = append(m.pendingMoves, event)
		return m, nil
	}
	m.moveInFlight = true
	return m, m.dropCmd(event)
}

func (m Model) dropCmd(event app.DropEvent) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.HandleDrop(context.Background(), event); err != nil {
			if isRejectedInput(err) {
				return actionMsg{status: "move rejected", reload: true, moveDone: true}
			}
			return actionMsg{err: err, reload: true, moveDone: true}
		}
		if event.Cancelled() {
			return actionMsg{status: "drag cancelled", moveDone: true}
		}
		return actionMsg{status: "task moved", reload: true, focusTaskID: event.TaskID, moveDone: true}
	}
}

// moveSelectedTaskToColumn drops the selected task at the end of a neighbouring column.
func (m Model) moveSelectedTaskToColumn(delta int) (tea.Model, tea.Cmd) {
	if m.filtersActive() {
		m.status = "clear search and filter to move tasks"
		return m, nil
	}
	task, loc, ok := m.selectedTaskLocation()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	targetIdx := m.selectedColumn + delta
	if targetIdx < 0 || targetIdx >= len(m.board) {
		return m, nil
	}
	target := m.board[targetIdx]
	return m.queueMove(app.DropEvent{
		TaskID:      task.ID,
		Source:      loc,
		Destination: &domain.Location{ColumnID: target.ID, Index: len(target.Tasks)},
	})
}

func (m Model) reorderSelectedTask(delta int) (tea.Model, tea.Cmd) {
	if m.filtersActive() {
		m.status = "clear search and filter to move tasks"
		return m, nil
	}
	task, loc, ok := m.selectedTaskLocation()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	next := loc.Index + delta
	if next < 0 || next >= len(m.currentColumnTasks()) {
		return m, nil
	}
	return m.queueMove(app.DropEvent{
		TaskID:      task.ID,
		Source:      loc,
		Destination: &domain.Location{ColumnID: loc.ColumnID, Index: next},
	})
}

// startSearchMode starts search mode.
func (m *Model) startSearchMode() tea.Cmd {
	m.mode = modeSearch
	m.searchInput.SetValue(m.searchQuery)
	m.searchInput.CursorEnd()
	m.status = "search"
	return m.searchInput.Focus()
}

func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.status = "search cleared"
		return m, m.loadData
	case "enter":
		m.mode = modeNone
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		if m.searchQuery == "" {
			m.status = "ready"
		} else {
			m.status = "search: " + m.searchQuery
		}
		return m, m.loadData
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	return m, tea.Batch(cmd, m.loadData)
}

// startTaskForm opens the add form for the selected column, or the edit form for task.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	m.formFocus = 0
	m.priorityIdx = priorityIndex(domain.PriorityMedium)
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 120),
		newModalInput("", "description (markdown)", "", 500),
		newModalInput("", "low | medium | high", "", 16),
		newModalInput("", "YYYY-MM-DD or -", "", 32),
		newModalInput("", "csv tags", "", 160),
	}
	if task != nil {
		m.formInputs[taskFieldTitle].SetValue(task.Title)
		m.formInputs[taskFieldDescription].SetValue(task.Description)
		m.priorityIdx = priorityIndex(task.Priority)
		m.formInputs[taskFieldDeadline].SetValue(task.Deadline)
		m.formInputs[taskFieldTags].SetValue(strings.Join(task.Tags, ", "))
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		column, ok := m.currentColumn()
		if !ok {
			m.formInputs = nil
			m.status = "add a column first"
			return nil
		}
		m.formColumnID = column.ID
		m.editingTaskID = ""
		m.mode = modeAddTask
		m.status = "new task in " + column.Title
	}
	m.formInputs[taskFieldPriority].SetValue(string(priorityOptions[m.priorityIdx]))
	return m.focusFormField(0)
}

func (m *Model) startColumnForm() tea.Cmd {
	m.formFocus = 0
	m.formInputs = []textinput.Model{
		newModalInput("", "column title (required)", "", 80),
		newModalInput("", domain.DefaultColumnColor, "", 7),
	}
	m.mode = modeAddColumn
	m.status = "new column"
	return m.focusFormField(0)
}

// focusFormField focuses one form field; the priority field is driven by
// left/right instead of text input.
func (m *Model) focusFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	if m.isTaskForm() && idx == taskFieldPriority {
		return nil
	}
	return m.formInputs[idx].Focus()
}

func (m Model) isTaskForm() bool {
	return m.mode == modeAddTask || m.mode == modeEditTask
}

func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.formInputs = nil
		m.editingTaskID = ""
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField(wrapIndex(m.formFocus, 1, len(m.formInputs)))
	case "shift+tab", "up":
		return m, m.focusFormField(wrapIndex(m.formFocus, -1, len(m.formInputs)))
	case "enter":
		if m.mode == modeAddColumn {
			return m.submitColumnForm()
		}
		return m.submitTaskForm()
	}
	if m.isTaskForm() && m.formFocus == taskFieldPriority {
		switch msg.String() {
		case "left", "h":
			m.cyclePriority(-1)
		case "right", "l":
			m.cyclePriority(1)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

func (m *Model) cyclePriority(delta int) {
	m.priorityIdx = wrapIndex(m.priorityIdx, delta, len(priorityOptions))
	m.formInputs[taskFieldPriority].SetValue(string(priorityOptions[m.priorityIdx]))
}

// formValues returns trimmed values of the open form.
func (m Model) formValues() []string {
	out := make([]string, len(m.formInputs))
	for idx, in := range m.formInputs {
		out[idx] = strings.TrimSpace(in.Value())
	}
	return out
}

func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	vals := m.formValues()
	if vals[taskFieldTitle] == "" {
		m.status = "title required"
		return m, nil
	}
	deadline := vals[taskFieldDeadline]
	if deadline == "-" {
		deadline = ""
	}
	if deadline != "" {
		if _, ok := domain.ParseDeadline(deadline); !ok {
			m.status = "deadline must be YYYY-MM-DD"
			return m, m.focusFormField(taskFieldDeadline)
		}
	}
	priority := priorityOptions[m.priorityIdx]

	if m.mode == modeAddTask {
		columnID := m.formColumnID
		draft := app.TaskDraft{
			Title:       vals[taskFieldTitle],
			Description: vals[taskFieldDescription],
			Priority:    string(priority),
			Deadline:    deadline,
			Tags:        vals[taskFieldTags],
		}
		m.mode = modeNone
		m.formInputs = nil
		return m, func() tea.Msg {
			task, err := m.svc.AddTask(context.Background(), columnID, draft)
			if err != nil {
				if isRejectedInput(err) {
					return actionMsg{status: "task not added: " + err.Error(), reload: true}
				}
				return actionMsg{err: err}
			}
			return actionMsg{status: "task created", reload: true, focusTaskID: task.ID}
		}
	}

	current, ok := m.taskByID(m.editingTaskID)
	m.mode = modeNone
	m.formInputs = nil
	m.editingTaskID = ""
	if !ok {
		m.status = "task no longer exists"
		return m, m.loadData
	}
	updated := current
	updated.Title = vals[taskFieldTitle]
	updated.Description = vals[taskFieldDescription]
	updated.Priority = priority
	updated.Deadline = deadline
	updated.Tags = domain.ParseTags(vals[taskFieldTags])
	return m, func() tea.Msg {
		if err := m.svc.UpdateTask(context.Background(), updated); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "task updated", reload: true, focusTaskID: updated.ID}
	}
}

func (m Model) submitColumnForm() (tea.Model, tea.Cmd) {
	vals := m.formValues()
	if vals[columnFieldTitle] == "" {
		m.status = "title required"
		return m, nil
	}
	if color := vals[columnFieldColor]; color != "" && !hexColorPattern.MatchString(color) {
		m.status = "color must look like #6b7280"
		return m, m.focusFormField(columnFieldColor)
	}
	draft := app.ColumnDraft{Title: vals[columnFieldTitle], Color: vals[columnFieldColor]}
	m.mode = modeNone
	m.formInputs = nil
	return m, func() tea.Msg {
		column, err := m.svc.AddColumn(context.Background(), draft)
		if err != nil {
			if isRejectedInput(err) {
				return actionMsg{status: "column not added: " + err.Error()}
			}
			return actionMsg{err: err}
		}
		return actionMsg{status: "column added", reload: true, focusColumnID: column.ID}
	}
}

func (m Model) handleTaskInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task, ok := m.taskByID(m.infoTaskID)
	if !ok {
		m.mode = modeNone
		m.infoTaskID = ""
		m.status = "task info unavailable"
		return m, nil
	}
	switch {
	case msg.String() == "esc", msg.String() == "i", msg.String() == "enter":
		m.mode = modeNone
		m.infoTaskID = ""
		m.status = "ready"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		m.infoTaskID = ""
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		m.mode = modeNone
		m.infoTaskID = ""
		return m.deleteSelectedTask()
	default:
		return m, nil
	}
}

func (m Model) deleteSelectedTask() (tea.Model, tea.Cmd) {
	column, ok := m.currentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	task, ok := m.selectedTask0()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	return m, func() tea.Msg {
		if err := m.svc.DeleteTask(context.Background(), column.ID, task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "deleted " + truncate(task.Title, 32), reload: true}
	}
}

func (m *Model) startImport() tea.Cmd {
	m.mode = modeImport
	m.importInput.SetValue("")
	m.status = "import board"
	return m.importInput.Focus()
}

func (m Model) handleImportKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.importInput.Blur()
		m.status = "import cancelled"
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.importInput.Value())
		if path == "" {
			m.status = "path required"
			return m, nil
		}
		m.mode = modeNone
		m.importInput.Blur()
		m.status = "importing..."
		return m, m.importCmd(path)
	}
	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

func (m Model) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := m.readFile(path)
		if err != nil {
			return actionMsg{alert: "Could not read " + path + ": " + err.Error()}
		}
		if err := m.svc.ImportBoard(context.Background(), data); err != nil {
			if errors.Is(err, domain.ErrNotAList) {
				return actionMsg{alert: "Invalid file format: expected a JSON list of columns."}
			}
			return actionMsg{alert: "Error importing file: " + err.Error()}
		}
		return actionMsg{status: "board imported from " + path, reload: true}
	}
}

func (m Model) exportCmd() tea.Cmd {
	path := m.exportPath
	return func() tea.Msg {
		data, err := m.svc.ExportBoard(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		if err := m.writeFile(path, data, 0o644); err != nil {
			return actionMsg{err: fmt.Errorf("write export: %w", err)}
		}
		return actionMsg{status: "exported board to " + path}
	}
}

func (m Model) copyCmd() tea.Cmd {
	write := m.clipboard
	return func() tea.Msg {
		if write == nil {
			return actionMsg{status: "clipboard unavailable"}
		}
		data, err := m.svc.ExportBoard(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		if err := write(string(data)); err != nil {
			return actionMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return actionMsg{status: "board JSON copied to clipboard"}
	}
}

func (m Model) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.Reset(context.Background()); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "board reset", reload: true}
	}
}

// handleMouseWheel moves the task selection.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// handleMouseClick selects the column under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll || len(m.board) == 0 {
		return m, nil
	}
	start, end := m.visibleColumns()
	stride := m.columnWidth() + columnOverhead
	idx := start + msg.X/max(1, stride)
	if idx >= start && idx < end && idx != m.selectedColumn {
		m.selectedColumn = idx
		m.selectedTask = 0
	}
	return m, nil
}

// filtersActive reports whether the displayed board is a filtered view.
func (m Model) filtersActive() bool {
	return m.searchQuery != "" || m.priorityFilter.Active()
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	if len(m.board) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.board)-1)
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(tasks)-1)
}

func (m *Model) focusTaskByID(taskID string) {
	if _, loc, ok := m.board.FindTask(taskID); ok {
		m.selectedColumn = m.board.ColumnIndex(loc.ColumnID)
		m.selectedTask = loc.Index
	}
}

func (m Model) currentColumn() (domain.Column, bool) {
	if len(m.board) == 0 {
		return domain.Column{}, false
	}
	return m.board[clamp(m.selectedColumn, 0, len(m.board)-1)], true
}

func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return column.Tasks
}

// selectedTask0 returns the task under the cursor.
func (m Model) selectedTask0() (domain.Task, bool) {
	task, _, ok := m.selectedTaskLocation()
	return task, ok
}

func (m Model) selectedTaskLocation() (domain.Task, domain.Location, bool) {
	column, ok := m.currentColumn()
	if !ok || m.selectedTask < 0 || m.selectedTask >= len(column.Tasks) {
		return domain.Task{}, domain.Location{}, false
	}
	return column.Tasks[m.selectedTask], domain.Location{ColumnID: column.ID, Index: m.selectedTask}, true
}

func (m Model) taskByID(taskID string) (domain.Task, bool) {
	task, _, ok := m.board.FindTask(taskID)
	return task, ok
}

// isRejectedInput reports errors the board raises for invalid input; the UI
// treats them as no-ops rather than failures.
func isRejectedInput(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidTitle,
		domain.ErrInvalidPriority,
		domain.ErrInvalidDeadline,
		domain.ErrInvalidPosition,
		domain.ErrColumnNotFound,
		app.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func priorityIndex(priority domain.Priority) int {
	for idx, option := range priorityOptions {
		if option == priority {
			return idx
		}
	}
	return 1
}

func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := current + delta
	for next < 0 {
		next += total
	}
	for next >= total {
		next -= total
	}
	return next
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	start := max(0, selected-windowSize/2)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// truncate truncates the requested operation.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}
