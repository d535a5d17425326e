package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// TimestampLayout matches the ISO-8601 form used for createdAt values.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the date-only deadline form.
const DateLayout = "2006-01-02"

var deadlineLayouts = []string{DateLayout, time.RFC3339, "2006-01-02T15:04"}

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Deadline    string   `json:"deadline,omitempty"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
}

type TaskInput struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Deadline    string
	Tags        []string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Deadline = strings.TrimSpace(in.Deadline)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}
	if in.Deadline != "" {
		if _, ok := ParseDeadline(in.Deadline); !ok {
			return Task{}, ErrInvalidDeadline
		}
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Deadline:    in.Deadline,
		Tags:        normalizeTags(in.Tags),
		CreatedAt:   FormatTimestamp(now),
	}, nil
}

// ParsePriority maps user input onto a priority; blank input means medium.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !slices.Contains(validPriorities, p) {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// ParseTags splits a comma-separated tag list, trimming and discarding empties.
func ParseTags(raw string) []string {
	return normalizeTags(strings.Split(raw, ","))
}

// ParseDeadline parses a deadline string. Date-only values are midnight UTC.
func ParseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// IsOverdue reports whether the task has a parseable deadline strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	deadline, ok := ParseDeadline(t.Deadline)
	if !ok {
		return false
	}
	return deadline.Before(now)
}

// Matches reports whether the task passes a search text and priority filter.
func (t Task) Matches(search string, filter PriorityFilter) bool {
	if !filter.Allows(t.Priority) {
		return false
	}
	query := strings.ToLower(search)
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), query) || strings.Contains(strings.ToLower(t.Description), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func (t Task) clone() Task {
	out := t
	out.Tags = append(make([]string, 0, len(t.Tags)), t.Tags...)
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
