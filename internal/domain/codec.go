package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeBoard parses a JSON board. Anything other than a top-level array of
// column objects is rejected; missing task and tag lists decode as empty.
func DecodeBoard(data []byte) (Board, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotAList
	}
	var board Board
	if err := json.Unmarshal(trimmed, &board); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return normalizeBoard(board), nil
}

// EncodeBoard serializes b. Indented output uses two spaces and ends with a newline.
func EncodeBoard(b Board, indent bool) ([]byte, error) {
	b = normalizeBoard(b)
	if !indent {
		return json.Marshal(b)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func normalizeBoard(b Board) Board {
	out := make(Board, 0, len(b))
	for _, column := range b {
		tasks := make([]Task, 0, len(column.Tasks))
		for _, task := range column.Tasks {
			if task.Tags == nil {
				task.Tags = []string{}
			}
			tasks = append(tasks, task)
		}
		column.Tasks = tasks
		out = append(out, column)
	}
	return out
}
