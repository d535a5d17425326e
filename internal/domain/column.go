package domain

import "strings"

// DefaultColumnColor is applied to new columns created without a color.
const DefaultColumnColor = "#6b7280"

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
	Tasks []Task `json:"tasks"`
}

type ColumnInput struct {
	ID    string
	Title string
	Color string
}

func NewColumn(in ColumnInput) (Column, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Color = strings.TrimSpace(in.Color)
	if in.ID == "" {
		return Column{}, ErrInvalidID
	}
	if in.Title == "" {
		return Column{}, ErrInvalidTitle
	}
	if in.Color == "" {
		in.Color = DefaultColumnColor
	}
	return Column{
		ID:    in.ID,
		Title: in.Title,
		Color: in.Color,
		Tasks: []Task{},
	}, nil
}

// TaskIndex returns the position of taskID in the column, or -1.
func (c Column) TaskIndex(taskID string) int {
	for idx, task := range c.Tasks {
		if task.ID == taskID {
			return idx
		}
	}
	return -1
}

func (c Column) clone() Column {
	out := c
	out.Tasks = make([]Task, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		out.Tasks = append(out.Tasks, task.clone())
	}
	return out
}
