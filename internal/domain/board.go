package domain

import (
	"fmt"
	"slices"
)

// Board is the ordered list of columns. Operations return a new Board and
// leave the receiver untouched; unchanged columns share their task slices.
type Board []Column

// Location addresses a task slot by column id and index.
type Location struct {
	ColumnID string
	Index    int
}

// ColumnIndex returns the position of columnID, or -1.
func (b Board) ColumnIndex(columnID string) int {
	for idx, column := range b {
		if column.ID == columnID {
			return idx
		}
	}
	return -1
}

// Column returns the column with the given id.
func (b Board) Column(columnID string) (Column, bool) {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return Column{}, false
	}
	return b[idx], true
}

// FindTask returns the first task with the given id and its location.
func (b Board) FindTask(taskID string) (Task, Location, bool) {
	for _, column := range b {
		if idx := column.TaskIndex(taskID); idx >= 0 {
			return column.Tasks[idx], Location{ColumnID: column.ID, Index: idx}, true
		}
	}
	return Task{}, Location{}, false
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	total := 0
	for _, column := range b {
		total += len(column.Tasks)
	}
	return total
}

// MoveTask removes the task at src and inserts it at dst. The destination
// index is clamped into [0, len(destination tasks)] after removal.
func (b Board) MoveTask(src, dst Location) (Board, error) {
	srcCol := b.ColumnIndex(src.ColumnID)
	dstCol := b.ColumnIndex(dst.ColumnID)
	if srcCol < 0 || dstCol < 0 {
		return b, ErrColumnNotFound
	}
	if src.Index < 0 || src.Index >= len(b[srcCol].Tasks) {
		return b, ErrInvalidPosition
	}

	out := slices.Clone(b)
	task := out[srcCol].Tasks[src.Index]
	out[srcCol].Tasks = slices.Delete(slices.Clone(out[srcCol].Tasks), src.Index, src.Index+1)

	target := out[dstCol].Tasks
	if dstCol != srcCol {
		target = slices.Clone(target)
	}
	at := min(max(dst.Index, 0), len(target))
	out[dstCol].Tasks = slices.Insert(target, at, task)
	return out, nil
}

// AppendTask adds task to the end of the column.
func (b Board) AppendTask(columnID string, task Task) (Board, error) {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return b, ErrColumnNotFound
	}
	if _, _, exists := b.FindTask(task.ID); exists {
		return b, ErrDuplicateID
	}
	out := slices.Clone(b)
	out[idx].Tasks = append(slices.Clip(slices.Clone(out[idx].Tasks)), task)
	return out, nil
}

// DeleteTask removes the task from the column. It reports whether anything changed.
func (b Board) DeleteTask(columnID, taskID string) (Board, bool) {
	colIdx := b.ColumnIndex(columnID)
	if colIdx < 0 {
		return b, false
	}
	taskIdx := b[colIdx].TaskIndex(taskID)
	if taskIdx < 0 {
		return b, false
	}
	out := slices.Clone(b)
	out[colIdx].Tasks = slices.Delete(slices.Clone(out[colIdx].Tasks), taskIdx, taskIdx+1)
	return out, true
}

// ReplaceTask swaps in task for the first task sharing its id, searching every column.
func (b Board) ReplaceTask(task Task) (Board, bool) {
	_, loc, ok := b.FindTask(task.ID)
	if !ok {
		return b, false
	}
	colIdx := b.ColumnIndex(loc.ColumnID)
	out := slices.Clone(b)
	out[colIdx].Tasks = slices.Clone(out[colIdx].Tasks)
	out[colIdx].Tasks[loc.Index] = task
	return out, true
}

// AppendColumn adds column to the end of the board.
func (b Board) AppendColumn(column Column) (Board, error) {
	if b.ColumnIndex(column.ID) >= 0 {
		return b, ErrDuplicateID
	}
	if column.Tasks == nil {
		column.Tasks = []Task{}
	}
	out := append(slices.Clip(slices.Clone(b)), column)
	return out, nil
}

// Validate checks id invariants: non-empty and unique for columns and tasks.
func (b Board) Validate() error {
	columnIDs := make(map[string]struct{}, len(b))
	taskIDs := map[string]string{}
	for colIdx, column := range b {
		if column.ID == "" {
			return fmt.Errorf("%w: column %d has an empty id", ErrCorruptBoard, colIdx)
		}
		if _, dup := columnIDs[column.ID]; dup {
			return fmt.Errorf("%w: duplicate column id %q", ErrCorruptBoard, column.ID)
		}
		columnIDs[column.ID] = struct{}{}
		for taskIdx, task := range column.Tasks {
			if task.ID == "" {
				return fmt.Errorf("%w: task %d in column %q has an empty id", ErrCorruptBoard, taskIdx, column.ID)
			}
			if owner, dup := taskIDs[task.ID]; dup {
				return fmt.Errorf("%w: task id %q appears in %q and %q", ErrCorruptBoard, task.ID, owner, column.ID)
			}
			taskIDs[task.ID] = column.ID
		}
	}
	return nil
}

// Clone returns a deep copy.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, 0, len(b))
	for _, column := range b {
		out = append(out, column.clone())
	}
	return out
}
