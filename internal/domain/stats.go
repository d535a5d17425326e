package domain

import "time"

// DefaultDoneColumnID names the column counted as completed work.
const DefaultDoneColumnID = "done"

type Stats struct {
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
	HighPriorityTasks int `json:"highPriorityTasks"`
	OverdueTasks      int `json:"overdueTasks"`
}

func ComputeStats(b Board, doneColumnID string, now time.Time) Stats {
	var stats Stats
	for _, column := range b {
		stats.TotalTasks += len(column.Tasks)
		if column.ID == doneColumnID {
			stats.CompletedTasks += len(column.Tasks)
		}
		for _, task := range column.Tasks {
			if task.Priority == PriorityHigh {
				stats.HighPriorityTasks++
			}
			if task.IsOverdue(now) {
				stats.OverdueTasks++
			}
		}
	}
	return stats
}
