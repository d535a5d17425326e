package domain

import (
	"strings"
)

// PriorityFilter narrows the visible tasks to one priority, or all of them.
type PriorityFilter string

const PriorityFilterAll PriorityFilter = "all"

var priorityFilterCycle = []PriorityFilter{
	PriorityFilterAll,
	PriorityFilter(PriorityHigh),
	PriorityFilter(PriorityMedium),
	PriorityFilter(PriorityLow),
}

func ParsePriorityFilter(raw string) (PriorityFilter, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == string(PriorityFilterAll) {
		return PriorityFilterAll, nil
	}
	p, err := ParsePriority(raw)
	if err != nil {
		return "", err
	}
	return PriorityFilter(p), nil
}

// Allows reports whether tasks with priority p pass the filter.
func (f PriorityFilter) Allows(p Priority) bool {
	return f == "" || f == PriorityFilterAll || Priority(f) == p
}

// Next cycles all -> high -> medium -> low -> all.
func (f PriorityFilter) Next() PriorityFilter {
	for idx, candidate := range priorityFilterCycle {
		if candidate == f {
			return priorityFilterCycle[(idx+1)%len(priorityFilterCycle)]
		}
	}
	return PriorityFilterAll
}

// Active reports whether the filter hides anything.
func (f PriorityFilter) Active() bool {
	return f != "" && f != PriorityFilterAll
}

// FilterBoard returns a fresh board keeping every column and only the tasks
// matching search and filter. A nil board yields an empty, non-nil board.
func FilterBoard(b Board, search string, filter PriorityFilter) Board {
	out := make(Board, 0, len(b))
	for _, column := range b {
		kept := make([]Task, 0, len(column.Tasks))
		for _, task := range column.Tasks {
			if task.Matches(search, filter) {
				kept = append(kept, task)
			}
		}
		column.Tasks = kept
		out = append(out, column)
	}
	return out
}
