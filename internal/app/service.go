package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/evanschultz/kanpro/internal/domain"
)

// DefaultStorageKey is the key the board is persisted under.
const DefaultStorageKey = "kanban-data"

const maxIDAttempts = 8

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	StorageKey         string
	DoneColumnID       string
	DefaultColumnColor string
	Logger             Logger
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// LoadSource names where a loaded board came from.
type LoadSource string

const (
	LoadSourceStorage LoadSource = "storage"
	LoadSourceSeed    LoadSource = "seed"
)

// LoadReport describes the outcome of Load. Err is set when a stored value
// existed but could not be used.
type LoadReport struct {
	Source LoadSource
	Err    error
}

// TaskDraft carries raw task form values.
type TaskDraft struct {
	Title       string
	Description string
	Priority    string
	Deadline    string
	Tags        string
}

// ColumnDraft carries raw column form values.
type ColumnDraft struct {
	Title string
	Color string
}

// Service owns the board state. Every commit replaces the board, bumps the
// revision and mirrors the board into storage.
type Service struct {
	mu sync.Mutex

	storage      Storage
	idGen        IDGenerator
	clock        Clock
	logger       Logger
	storageKey   string
	doneColumnID string
	defaultColor string

	board    domain.Board
	revision uint64

	stats    statsMemo
	filtered filterMemo
}

type statsMemo struct {
	valid    bool
	revision uint64
	value    domain.Stats
}

type filterMemo struct {
	valid    bool
	revision uint64
	search   string
	filter   domain.PriorityFilter
	value    domain.Board
}

// NewService constructs a service holding the seed board until Load runs.
func NewService(storage Storage, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if strings.TrimSpace(cfg.StorageKey) == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if strings.TrimSpace(cfg.DoneColumnID) == "" {
		cfg.DoneColumnID = domain.DefaultDoneColumnID
	}
	if strings.TrimSpace(cfg.DefaultColumnColor) == "" {
		cfg.DefaultColumnColor = domain.DefaultColumnColor
	}
	return &Service{
		storage:      storage,
		idGen:        idGen,
		clock:        clock,
		logger:       cfg.Logger,
		storageKey:   cfg.StorageKey,
		doneColumnID: cfg.DoneColumnID,
		defaultColor: cfg.DefaultColumnColor,
		board:        SeedBoard(clock()),
	}
}

// Load restores the board from storage, falling back to the seed when the
// key is missing or its value is unreadable or not a list.
func (s *Service) Load(ctx context.Context) LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, report := s.readStored(ctx)
	if board == nil {
		board = SeedBoard(s.clock())
	}
	s.commit(ctx, board)
	return report
}

func (s *Service) readStored(ctx context.Context) (domain.Board, LoadReport) {
	if s.storage == nil {
		return nil, LoadReport{Source: LoadSourceSeed}
	}
	raw, found, err := s.storage.GetItem(ctx, s.storageKey)
	if err != nil {
		s.logger.Warn("read stored board failed; using seed", "key", s.storageKey, "err", err)
		return nil, LoadReport{Source: LoadSourceSeed, Err: err}
	}
	if !found {
		s.logger.Debug("no stored board; using seed", "key", s.storageKey)
		return nil, LoadReport{Source: LoadSourceSeed}
	}
	board, err := domain.DecodeBoard([]byte(raw))
	if err != nil {
		s.logger.Warn("stored board is malformed; using seed", "key", s.storageKey, "err", err)
		return nil, LoadReport{Source: LoadSourceSeed, Err: err}
	}
	return board, LoadReport{Source: LoadSourceStorage}
}

// Board returns a deep copy of the current board.
func (s *Service) Board() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Revision increases by one on every committed change.
func (s *Service) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Health reports domain.ErrCorruptBoard when the board breaks its id invariants.
func (s *Service) Health() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Validate()
}

// MoveTask moves a task between slots. A nil destination is a cancelled drag.
func (s *Service) MoveTask(ctx context.Context, source domain.Location, destination *domain.Location) error {
	if destination == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.board.MoveTask(source, *destination)
	if err != nil {
		return err
	}
	s.commit(ctx, next)
	return nil
}

// AddTask appends a new task to the end of a column.
func (s *Service) AddTask(ctx context.Context, columnID string, draft TaskDraft) (domain.Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return domain.Task{}, domain.ErrInvalidTitle
	}
	priority, err := domain.ParsePriority(draft.Priority)
	if err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board.ColumnIndex(columnID) < 0 {
		return domain.Task{}, domain.ErrColumnNotFound
	}
	id, err := s.nextID(func(id string) bool {
		_, _, taken := s.board.FindTask(id)
		return taken
	})
	if err != nil {
		return domain.Task{}, err
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    priority,
		Deadline:    draft.Deadline,
		Tags:        domain.ParseTags(draft.Tags),
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	next, err := s.board.AppendTask(columnID, task)
	if err != nil {
		return domain.Task{}, err
	}
	s.commit(ctx, next)
	return task, nil
}

// DeleteTask removes a task from a column. Missing tasks and columns are ignored.
func (s *Service) DeleteTask(ctx context.Context, columnID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.board.DeleteTask(columnID, taskID)
	if !changed {
		return nil
	}
	s.commit(ctx, next)
	return nil
}

// UpdateTask replaces the task with the same id, wherever it lives.
func (s *Service) UpdateTask(ctx context.Context, task domain.Task) error {
	if task.Tags == nil {
		task.Tags = []string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.board.ReplaceTask(task)
	if !changed {
		return nil
	}
	s.commit(ctx, next)
	return nil
}

// AddColumn appends an empty column.
func (s *Service) AddColumn(ctx context.Context, draft ColumnDraft) (domain.Column, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return domain.Column{}, domain.ErrInvalidTitle
	}
	if strings.TrimSpace(draft.Color) == "" {
		draft.Color = s.defaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID(func(id string) bool {
		return s.board.ColumnIndex(id) >= 0
	})
	if err != nil {
		return domain.Column{}, err
	}
	column, err := domain.NewColumn(domain.ColumnInput{ID: id, Title: draft.Title, Color: draft.Color})
	if err != nil {
		return domain.Column{}, err
	}
	next, err := s.board.AppendColumn(column)
	if err != nil {
		return domain.Column{}, err
	}
	s.commit(ctx, next)
	return column, nil
}

// ReplaceBoard swaps in a whole board. A nil board is not a list.
func (s *Service) ReplaceBoard(ctx context.Context, board domain.Board) error {
	if board == nil {
		return domain.ErrNotAList
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(ctx, board.Clone())
	return nil
}

// Reset clears the stored board and restores the seed.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.RemoveItem(ctx, s.storageKey); err != nil {
			s.logger.Error("clear stored board failed", "key", s.storageKey, "err", err)
			return err
		}
	}
	s.commit(ctx, SeedBoard(s.clock()))
	s.logger.Info("board reset to seed", "key", s.storageKey)
	return nil
}

// Stats returns board statistics, recomputed once per revision.
func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats.valid && s.stats.revision == s.revision {
		return s.stats.value
	}
	s.stats = statsMemo{
		valid:    true,
		revision: s.revision,
		value:    domain.ComputeStats(s.board, s.doneColumnID, s.clock()),
	}
	return s.stats.value
}

// FilteredBoard returns the display view for search and filter, recomputed
// only when the revision or the inputs change.
func (s *Service) FilteredBoard(search string, filter domain.PriorityFilter) domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	memo := s.filtered
	if !memo.valid || memo.revision != s.revision || memo.search != search || memo.filter != filter {
		memo = filterMemo{
			valid:    true,
			revision: s.revision,
			search:   search,
			filter:   filter,
			value:    domain.FilterBoard(s.board, search, filter),
		}
		s.filtered = memo
	}
	return memo.value.Clone()
}

// commit must be called with s.mu held.
func (s *Service) commit(ctx context.Context, next domain.Board) {
	s.board = next
	s.revision++
	s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := domain.EncodeBoard(s.board, false)
	if err != nil {
		s.logger.Error("encode board failed", "err", err)
		return
	}
	if err := s.storage.SetItem(ctx, s.storageKey, string(data)); err != nil {
		s.logger.Error("persist board failed", "key", s.storageKey, "err", err)
	}
}

func (s *Service) nextID(taken func(string) bool) (string, error) {
	for range maxIDAttempts {
		id := strings.TrimSpace(s.idGen())
		if id != "" && !taken(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
