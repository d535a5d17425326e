package app

import (
	"context"
	"fmt"

	"github.com/evanschultz/kanpro/internal/domain"
)

// DefaultExportFileName is the suggested name for exported boards.
const DefaultExportFileName = "kanban-board.json"

// ExportBoard returns the board as indented JSON.
func (s *Service) ExportBoard(_ context.Context) ([]byte, error) {
	data, err := domain.EncodeBoard(s.Board(), true)
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return data, nil
}

// ImportBoard replaces the board with data, which must be a JSON array of
// columns. On failure the current board is kept.
func (s *Service) ImportBoard(ctx context.Context, data []byte) error {
	board, err := domain.DecodeBoard(data)
	if err != nil {
		s.logger.Warn("import rejected", "err", err)
		return err
	}
	if err := s.ReplaceBoard(ctx, board); err != nil {
		return err
	}
	s.logger.Info("board imported", "columns", len(board))
	return nil
}
