package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/kanpro/internal/domain"
)

// columnOverhead is the per-column border (2), padding (4) and margin (1).
const columnOverhead = 7

const (
	minColumnWidth = 24
	maxColumnWidth = 42
)

// palette holds the theme colors used while rendering.
type palette struct {
	accent    color.Color
	text      color.Color
	muted     color.Color
	dim       color.Color
	highlight color.Color
	warning   color.Color
}

func paletteFor(theme Theme) palette {
	if theme == ThemeLight {
		return palette{
			accent:    lipgloss.Color("#3b82f6"),
			text:      lipgloss.Color("235"),
			muted:     lipgloss.Color("244"),
			dim:       lipgloss.Color("250"),
			highlight: lipgloss.Color("#7c3aed"),
			warning:   lipgloss.Color(overdueColor),
		}
	}
	return palette{
		accent:    lipgloss.Color("62"),
		text:      lipgloss.Color("252"),
		muted:     lipgloss.Color("241"),
		dim:       lipgloss.Color("239"),
		highlight: lipgloss.Color("212"),
		warning:   lipgloss.Color("203"),
	}
}

const overdueColor = "#dc2626"

func priorityColor(p domain.Priority) color.Color {
	switch p {
	case domain.PriorityHigh:
		return lipgloss.Color("#ef4444")
	case domain.PriorityLow:
		return lipgloss.Color("#10b981")
	default:
		return lipgloss.Color("#f59e0b")
	}
}

func newView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// View renders the current board.
func (m Model) View() tea.View {
	if !m.ready {
		return newView("loading...")
	}
	pal := paletteFor(m.theme)
	if m.health != nil {
		return newView(m.renderRecovery(pal))
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(pal.text)
	statusStyle := lipgloss.NewStyle().Foreground(pal.dim)

	header := titleStyle.Render("kanpro") + "  " + statusStyle.Render("["+m.modeLabel()+"]")
	if m.searchQuery != "" {
		header += statusStyle.Render("  search: " + truncate(m.searchQuery, 32))
	}
	if m.priorityFilter.Active() {
		header += statusStyle.Render("  priority: " + string(m.priorityFilter))
	}

	sections := []string{header}
	if m.showStats {
		sections = append(sections, m.renderStats(pal))
	}
	sections = append(sections, "", m.renderBoard(pal))
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(pal.muted).
		BorderTop(true).
		BorderForeground(pal.dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(pal, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(pal, m.width-8)
	}
	if overlay != "" {
		height := lipgloss.Height(fullContent)
		if m.height > 0 {
			height = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, height))
	}
	return newView(fullContent)
}

func (m Model) modeLabel() string {
	switch m.mode {
	case modeDrag:
		return "drag"
	case modeSearch:
		return "search"
	case modeAddTask:
		return "add task"
	case modeEditTask:
		return "edit task"
	case modeAddColumn:
		return "add column"
	case modeTaskInfo:
		return "task"
	case modeImport:
		return "import"
	case modeConfirmReset:
		return "reset"
	case modeAlert:
		return "alert"
	default:
		return "normal"
	}
}

func (m Model) renderStats(pal palette) string {
	label := lipgloss.NewStyle().Foreground(pal.muted)
	value := lipgloss.NewStyle().Bold(true).Foreground(pal.text)
	warn := lipgloss.NewStyle().Bold(true).Foreground(pal.warning)
	parts := []string{
		label.Render("total ") + value.Render(fmt.Sprint(m.stats.TotalTasks)),
		label.Render("done ") + value.Render(fmt.Sprint(m.stats.CompletedTasks)),
		label.Render("high ") + lipgloss.NewStyle().Bold(true).Foreground(priorityColor(domain.PriorityHigh)).Render(fmt.Sprint(m.stats.HighPriorityTasks)),
	}
	overdue := value.Render(fmt.Sprint(m.stats.OverdueTasks))
	if m.stats.OverdueTasks > 0 {
		overdue = warn.Render(fmt.Sprint(m.stats.OverdueTasks))
	}
	parts = append(parts, label.Render("overdue ")+overdue)
	return strings.Join(parts, label.Render("  •  "))
}

// visibleColumns returns the half-open range of columns that fit the width.
func (m Model) visibleColumns() (int, int) {
	fit := len(m.board)
	if m.width > 0 {
		fit = max(1, m.width/(minColumnWidth+columnOverhead))
	}
	return windowBounds(len(m.board), m.selectedColumn, fit)
}

func (m Model) columnWidth() int {
	start, end := m.visibleColumns()
	count := end - start
	if count <= 0 {
		return minColumnWidth
	}
	w := 28
	if m.width > 0 {
		if candidate := (m.width - count*columnOverhead) / count; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, minColumnWidth, maxColumnWidth)
}

func (m Model) columnHeight() int {
	headerLines := 3
	if m.showStats {
		headerLines++
	}
	footerLines := 4
	return max(10, m.height-headerLines-footerLines)
}

func (m Model) renderBoard(pal palette) string {
	if len(m.board) == 0 {
		return lipgloss.NewStyle().Foreground(pal.muted).Render("no columns • press C to add one")
	}
	start, end := m.visibleColumns()
	colWidth := m.columnWidth()
	views := make([]string, 0, end-start+2)
	if start > 0 {
		views = append(views, lipgloss.NewStyle().Foreground(pal.muted).Render(fmt.Sprintf("‹%d", start)))
	}
	for colIdx := start; colIdx < end; colIdx++ {
		views = append(views, m.renderColumn(pal, colIdx, colWidth))
	}
	if end < len(m.board) {
		views = append(views, lipgloss.NewStyle().Foreground(pal.muted).Render(fmt.Sprintf("%d›", len(m.board)-end)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (m Model) renderColumn(pal palette, colIdx, colWidth int) string {
	column := m.board[colIdx]
	selectedCol := colIdx == m.selectedColumn
	dragging := m.mode == modeDrag
	columnColor := lipgloss.Color(column.Color)
	if strings.TrimSpace(column.Color) == "" {
		columnColor = lipgloss.Color(domain.DefaultColumnColor)
	}

	border := pal.dim
	if selectedCol {
		border = pal.accent
	}
	if dragging && column.ID == m.drag.target.ColumnID {
		border = pal.highlight
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)

	headerLines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(columnColor).Render(fmt.Sprintf("%s (%d)", column.Title, len(column.Tasks))),
	}

	markerStyle := lipgloss.NewStyle().Bold(true).Foreground(pal.highlight)
	dropMarker := markerStyle.Render("▸ drop " + truncate(m.drag.title, max(1, colWidth-12)))
	showMarker := dragging && column.ID == m.drag.target.ColumnID

	taskLines := make([]string, 0, len(column.Tasks)*3+1)
	selectedStart, selectedEnd := -1, -1
	slot := 0
	for taskIdx, task := range column.Tasks {
		if dragging && task.ID == m.drag.taskID {
			taskLines = append(taskLines, lipgloss.NewStyle().Foreground(pal.dim).Render("   "+truncate(task.Title, max(1, colWidth-6))))
			continue
		}
		if showMarker && slot == m.drag.target.Index {
			taskLines = append(taskLines, dropMarker)
		}
		slot++
		selected := selectedCol && taskIdx == m.selectedTask && !dragging
		rowStart := len(taskLines)
		taskLines = append(taskLines, m.renderCard(pal, task, selected, colWidth)...)
		if taskIdx < len(column.Tasks)-1 {
			taskLines = append(taskLines, "")
		}
		if selected {
			selectedStart, selectedEnd = rowStart, len(taskLines)-1
		}
	}
	if showMarker && slot <= m.drag.target.Index {
		taskLines = append(taskLines, dropMarker)
	}
	if len(taskLines) == 0 {
		taskLines = append(taskLines, lipgloss.NewStyle().Foreground(pal.muted).Render("(empty)"))
	}

	innerHeight := max(1, m.columnHeight()-4)
	window := max(1, innerHeight-len(headerLines))
	scrollTop := 0
	if selectedStart >= 0 && selectedEnd >= window {
		scrollTop = selectedEnd - window + 1
	}
	scrollTop = clamp(scrollTop, 0, max(0, len(taskLines)-window))
	if len(taskLines) > window {
		taskLines = taskLines[scrollTop : scrollTop+window]
	}
	lines := append(headerLines, taskLines...)
	return style.Render(fitLines(strings.Join(lines, "\n"), innerHeight))
}

// renderCard returns the lines of one task card.
func (m Model) renderCard(pal palette, task domain.Task, selected bool, colWidth int) []string {
	prefix := "   "
	titleStyle := lipgloss.NewStyle().Foreground(pal.text)
	if selected {
		prefix = "│  "
		titleStyle = lipgloss.NewStyle().Bold(true).Foreground(pal.highlight)
	}
	textWidth := max(1, colWidth-6)
	lines := []string{prefix + titleStyle.Render(truncate(task.Title, textWidth))}

	subStyle := lipgloss.NewStyle().Foreground(pal.muted)
	meta := []string{lipgloss.NewStyle().Bold(true).Foreground(priorityColor(task.Priority)).Render(string(task.Priority))}
	if task.Deadline != "" {
		if task.IsOverdue(m.now()) {
			meta = append(meta, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(overdueColor)).Render("! "+task.Deadline))
		} else {
			meta = append(meta, subStyle.Render(task.Deadline))
		}
	}
	if len(task.Tags) > 0 {
		tags := make([]string, 0, len(task.Tags))
		for _, tag := range task.Tags {
			tags = append(tags, "#"+tag)
		}
		meta = append(meta, subStyle.Render(truncate(strings.Join(tags, " "), textWidth)))
	}
	lines = append(lines, prefix+strings.Join(meta, " "))
	if m.showDescription && strings.TrimSpace(task.Description) != "" {
		first := strings.TrimSpace(strings.SplitN(task.Description, "\n", 2)[0])
		lines = append(lines, prefix+subStyle.Render(truncate(first, textWidth)))
	}
	return lines
}

func (m Model) renderModeOverlay(pal palette, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.accent).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(pal.accent)
	hintStyle := lipgloss.NewStyle().Foreground(pal.muted)

	switch m.mode {
	case modeTaskInfo:
		task, ok := m.taskByID(m.infoTaskID)
		if !ok {
			return ""
		}
		width := clamp(maxWidth, 32, 76)
		deadline := "-"
		if task.Deadline != "" {
			deadline = task.Deadline
		}
		tags := "-"
		if len(task.Tags) > 0 {
			tags = strings.Join(task.Tags, ", ")
		}
		lines := []string{
			titleStyle.Render("Task Info"),
			task.Title,
			hintStyle.Render("priority: " + string(task.Priority) + " • deadline: " + deadline),
			hintStyle.Render("tags: " + tags),
			hintStyle.Render("created: " + task.CreatedAt),
		}
		if task.IsOverdue(m.now()) {
			lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(overdueColor)).Render("overdue"))
		}
		if desc := m.markdown.render(task.Description, width-4, m.theme); desc != "" {
			lines = append(lines, "", desc)
		}
		lines = append(lines, "", hintStyle.Render("e edit • d delete • esc close"))
		return boxStyle.Width(width).Render(strings.Join(lines, "\n"))

	case modeAddTask, modeEditTask:
		title := "New Task"
		if m.mode == modeEditTask {
			title = "Edit Task"
		}
		labels := []string{"title", "description", "priority", "deadline", "tags"}
		lines := []string{titleStyle.Render(title)}
		for idx, in := range m.formInputs {
			label := fmt.Sprintf("%-12s", labels[idx]+":")
			if idx == m.formFocus {
				label = titleStyle.Render(label)
			} else {
				label = hintStyle.Render(label)
			}
			field := in.View()
			if idx == taskFieldPriority {
				field = m.renderPriorityPicker(pal, idx == m.formFocus)
			}
			lines = append(lines, label+" "+field)
		}
		lines = append(lines, "", hintStyle.Render("tab next • h/l priority • enter save • esc cancel"))
		return boxStyle.Width(clamp(maxWidth, 40, 80)).Render(strings.Join(lines, "\n"))

	case modeAddColumn:
		labels := []string{"title", "color"}
		lines := []string{titleStyle.Render("New Column")}
		for idx, in := range m.formInputs {
			label := fmt.Sprintf("%-8s", labels[idx]+":")
			if idx == m.formFocus {
				label = titleStyle.Render(label)
			} else {
				label = hintStyle.Render(label)
			}
			lines = append(lines, label+" "+in.View())
		}
		lines = append(lines, "", hintStyle.Render("tab next • enter save • esc cancel"))
		return boxStyle.Width(clamp(maxWidth, 36, 64)).Render(strings.Join(lines, "\n"))

	case modeSearch:
		lines := []string{
			titleStyle.Render("Search"),
			m.searchInput.View(),
			hintStyle.Render("enter apply • esc clear"),
		}
		return boxStyle.Width(clamp(maxWidth, 36, 72)).Render(strings.Join(lines, "\n"))

	case modeImport:
		lines := []string{
			titleStyle.Render("Import Board"),
			m.importInput.View(),
			hintStyle.Render("replaces the whole board • enter import • esc cancel"),
		}
		return boxStyle.Width(clamp(maxWidth, 40, 80)).Render(strings.Join(lines, "\n"))

	case modeConfirmReset:
		warn := lipgloss.NewStyle().Bold(true).Foreground(pal.warning)
		lines := []string{
			warn.Render("Reset board?"),
			"Stored data is cleared and the sample board is restored.",
			hintStyle.Render("y confirm • n cancel"),
		}
		return boxStyle.BorderForeground(pal.warning).Width(clamp(maxWidth, 36, 64)).Render(strings.Join(lines, "\n"))

	case modeAlert:
		warn := lipgloss.NewStyle().Bold(true).Foreground(pal.warning)
		lines := []string{
			warn.Render("Import failed"),
			m.alert,
			hintStyle.Render("enter dismiss"),
		}
		return boxStyle.BorderForeground(pal.warning).Width(clamp(maxWidth, 36, 72)).Render(strings.Join(lines, "\n"))

	default:
		return ""
	}
}

func (m Model) renderPriorityPicker(pal palette, focused bool) string {
	parts := make([]string, 0, len(priorityOptions))
	for idx, option := range priorityOptions {
		style := lipgloss.NewStyle().Foreground(pal.muted)
		if idx == m.priorityIdx {
			style = lipgloss.NewStyle().Bold(true).Foreground(priorityColor(option))
			if focused {
				style = style.Underline(true)
			}
		}
		parts = append(parts, style.Render(string(option)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHelpOverlay(pal palette, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	muted := lipgloss.NewStyle().Foreground(pal.muted)
	workflow := []string{
		"1. space grab task • h/l/j/k choose slot • space/enter drop • esc cancel",
		"2. [ ] move across columns • J K reorder within a column",
		"3. n add task • C add column • i/enter view • e edit • d delete",
		"4. / search • f cycle priority filter • esc clears both",
		"5. x export file • y copy JSON • I import • R reset",
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(pal.accent).Render("kanpro help"),
		"",
		hb.View(m.keys),
		"",
		muted.Render(strings.Join(workflow, "\n")),
		muted.Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// renderRecovery is shown when the stored board cannot be used.
func (m Model) renderRecovery(pal palette) string {
	warn := lipgloss.NewStyle().Bold(true).Foreground(pal.warning)
	muted := lipgloss.NewStyle().Foreground(pal.muted)
	lines := []string{
		warn.Render("The stored board could not be loaded."),
		"",
		m.health.Error(),
		"",
		muted.Render("press R or enter to clear stored data and restore the sample board"),
		muted.Render("r retry • q quit"),
	}
	if strings.TrimSpace(m.status) != "" {
		lines = append(lines, "", muted.Render(m.status))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.warning).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)
	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}
