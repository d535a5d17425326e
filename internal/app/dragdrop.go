package app

import (
	"context"
	"fmt"

	"github.com/evanschultz/kanpro/internal/domain"
)

// DropEvent is emitted when a dragged task is released. Destination is nil
// when the drag was cancelled or released outside any column. When TaskID is
// set the task is located by id at commit time and Source is only a hint.
type DropEvent struct {
	TaskID      string
	Source      domain.Location
	Destination *domain.Location
}

// Cancelled reports whether the event carries no destination.
func (e DropEvent) Cancelled() bool {
	return e.Destination == nil
}

// HandleDrop applies a drop event as a task move.
func (s *Service) HandleDrop(ctx context.Context, event DropEvent) error {
	if event.Cancelled() {
		return nil
	}
	if event.TaskID == "" {
		return s.MoveTask(ctx, event.Source, event.Destination)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, source, ok := s.board.FindTask(event.TaskID)
	if !ok {
		return fmt.Errorf("drop task %q: %w", event.TaskID, ErrNotFound)
	}
	next, err := s.board.MoveTask(source, *event.Destination)
	if err != nil {
		return err
	}
	s.commit(ctx, next)
	return nil
}
