package app

import (
	"time"

	"github.com/evanschultz/kanpro/internal/domain"
)

// SeedBoard returns the starter board shown on first launch and after a reset.
func SeedBoard(now time.Time) domain.Board {
	createdAt := domain.FormatTimestamp(now)
	return domain.Board{
		{
			ID:    "todo",
			Title: "📋 To Do",
			Color: "#3b82f6",
			Tasks: []domain.Task{
				{
					ID:          "1",
					Title:       "Design Homepage",
					Description: "Create wireframes and mockups for the main page",
					Priority:    domain.PriorityHigh,
					Deadline:    "2024-12-30",
					Tags:        []string{"design", "frontend"},
					CreatedAt:   createdAt,
				},
				{
					ID:          "2",
					Title:       "Setup Database",
					Description: "Configure PostgreSQL and create initial schemas",
					Priority:    domain.PriorityMedium,
					Tags:        []string{"backend", "database"},
					CreatedAt:   createdAt,
				},
			},
		},
		{
			ID:    "inprogress",
			Title: "🚀 In Progress",
			Color: "#f59e0b",
			Tasks: []domain.Task{
				{
					ID:          "3",
					Title:       "User Authentication",
					Description: "Implement login and registration functionality",
					Priority:    domain.PriorityHigh,
					Deadline:    "2025-01-05",
					Tags:        []string{"auth", "security"},
					CreatedAt:   createdAt,
				},
			},
		},
		{
			ID:    "review",
			Title: "👀 Review",
			Color: "#8b5cf6",
			Tasks: []domain.Task{
				{
					ID:          "4",
					Title:       "Code Review",
					Description: "Review payment integration code",
					Priority:    domain.PriorityMedium,
					Tags:        []string{"review", "payment"},
					CreatedAt:   createdAt,
				},
			},
		},
		{
			ID:    "done",
			Title: "✅ Done",
			Color: "#10b981",
			Tasks: []domain.Task{
				{
					ID:          "5",
					Title:       "Project Setup",
					Description: "Initialize React project with TypeScript",
					Priority:    domain.PriorityLow,
					Tags:        []string{"setup"},
					CreatedAt:   createdAt,
				},
			},
		},
	}
}
