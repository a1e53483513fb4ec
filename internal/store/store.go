// Package store keeps the client side view of one board in memory and
// reconciles it with a gateway.Gateway.
//
// A drag move is applied optimistically, committed through ChangeOrder and
// then always re-fetched; the re-fetched state is authoritative. Between the
// optimistic apply and a completed re-fetch the view may be stale and
// Synced reports false.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/dragdrop"
	"taskboard/internal/gateway"
	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

const opChangeOrder = "change-order"

var (
	ErrNoBoard         = errors.New("no board selected")
	ErrReorderInFlight = errors.New("a reorder is still being saved")
)

// PersistenceError is a failed gateway call. The store re-fetched (or tried
// to) before returning it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type view struct {
	columns []model.Column
	tasks   map[uint]model.Task
}

func (v view) clone() view {
	return view{columns: slices.Clone(v.columns), tasks: maps.Clone(v.tasks)}
}

type Store struct {
	gw gateway.Gateway

	mu      sync.RWMutex
	boards  []model.Board
	boardID uint
	current view
	good    view
	synced  bool

	reordering atomic.Bool
}

func New(gw gateway.Gateway) *Store {
	return &Store{
		gw:      gw,
		current: view{tasks: map[uint]model.Task{}},
		good:    view{tasks: map[uint]model.Task{}},
	}
}

// LoadBoards fetches the board list and refreshes the selected board. The
// first board is selected when none is, or the selected one is gone.
func (s *Store) LoadBoards(ctx context.Context) error {
	boards, err := s.gw.ListBoards(ctx)
	if err != nil {
		return s.failed("list-boards", err)
	}
	s.setBoards(boards)
	if s.BoardID() == 0 {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *Store) setBoards(boards []model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = boards
	if !slices.ContainsFunc(boards, func(b model.Board) bool { return b.ID == s.boardID }) {
		s.boardID = 0
		if len(boards) > 0 {
			s.boardID = boards[0].ID
		}
		s.current = view{tasks: map[uint]model.Task{}}
		s.good = s.current.clone()
	}
}

// SelectBoard switches the active board and fetches its columns and tasks.
func (s *Store) SelectBoard(ctx context.Context, boardID uint) error {
	s.mu.Lock()
	if !slices.ContainsFunc(s.boards, func(b model.Board) bool { return b.ID == boardID }) {
		s.mu.Unlock()
		return fmt.Errorf("board %d: %w", boardID, ErrNoBoard)
	}
	if s.boardID != boardID {
		s.boardID = boardID
		s.current = view{tasks: map[uint]model.Task{}}
		s.good = s.current.clone()
		s.synced = false
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh re-fetches the active board's tasks and columns and makes them
// the new last known good state.
func (s *Store) Refresh(ctx context.Context) error {
	boardID := s.BoardID()
	if boardID == 0 {
		return ErrNoBoard
	}

	tasks, err := s.gw.ListTasks(ctx, boardID)
	if err != nil {
		return s.failed("list-tasks", err)
	}
	columns, err := s.gw.ListColumns(ctx, boardID)
	if err != nil {
		return s.failed("list-columns", err)
	}

	v := view{columns: ordering.SortColumns(columns), tasks: make(map[uint]model.Task, len(tasks))}
	for i := range v.columns {
		v.columns[i].Tasks = nil
	}
	for _, t := range tasks {
		v.tasks[t.ID] = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boardID != boardID {
		// Another board was selected meanwhile.
		return nil
	}
	s.current = v
	s.good = v.clone()
	s.synced = true
	return nil
}

// ApplyOptimistic replaces the given tasks in memory right away.
func (s *Store) ApplyOptimistic(updated []model.Task) {
	if len(updated) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range updated {
		s.current.tasks[t.ID] = t
	}
	s.synced = false
}

// Commit persists updated through ChangeOrder and re-fetches whatever the
// outcome. The ChangeOrder response is not merged; the re-fetch wins.
func (s *Store) Commit(ctx context.Context, updated []model.Task) error {
	_, commitErr := s.gw.ChangeOrder(ctx, updated)
	if commitErr != nil {
		log.WithError(commitErr).WithFields(log.Fields{
			"board_id": s.BoardID(),
			"tasks":    len(updated),
		}).Error("change-order failed")
	}

	refreshErr := s.Refresh(ctx)
	if commitErr != nil {
		return &PersistenceError{Op: opChangeOrder, Err: commitErr}
	}
	return refreshErr
}

// Rollback re-fetches the board. When that fails too it restores the last
// known good state.
func (s *Store) Rollback(ctx context.Context) error {
	err := s.Refresh(ctx)
	if err == nil {
		return nil
	}
	s.mu.Lock()
	s.current = s.good.clone()
	s.synced = true
	s.mu.Unlock()
	log.WithError(err).WithField("board_id", s.BoardID()).Warn("re-fetch failed, restored last known good state")
	return err
}

// Move runs a drag move end to end: compute, apply optimistically, commit,
// re-sync. Only one move may be in flight; a second one fails with
// ErrReorderInFlight. A move that changes nothing returns a no-op result
// without touching the gateway.
func (s *Store) Move(ctx context.Context, move ordering.Move) (ordering.Result, error) {
	if !s.reordering.CompareAndSwap(false, true) {
		return ordering.Result{}, ErrReorderInFlight
	}
	defer s.reordering.Store(false)

	if s.BoardID() == 0 {
		return ordering.Result{}, ErrNoBoard
	}

	if move.OverTaskID == 0 && !s.onBoard(move.ColumnID) {
		return ordering.Result{}, fmt.Errorf("column %d: %w", move.ColumnID, ordering.ErrColumnNotFound)
	}

	res, err := ordering.ComputeReorder(s.allTasks(), move)
	if err != nil {
		log.WithError(err).WithField("task_id", move.TaskID).Debug("move ignored")
		return res, err
	}
	if res.Noop() {
		return res, nil
	}

	s.ApplyOptimistic(res.Changed)
	if err := s.Commit(ctx, res.Changed); err != nil {
		// A landed commit keeps the optimistic view until a fetch succeeds.
		var perr *PersistenceError
		if errors.As(err, &perr) && perr.Op == opChangeOrder && !s.Synced() {
			_ = s.Rollback(ctx)
		}
		return res, err
	}
	return res, nil
}

// Drop translates a drag library drop event and runs it as a Move. Drops
// that resolve to nothing return an empty result and no error.
func (s *Store) Drop(ctx context.Context, ev dragdrop.DropEvent) (ordering.Result, error) {
	move, err := dragdrop.Translate(ev)
	if errors.Is(err, dragdrop.ErrNoop) {
		return ordering.Result{}, nil
	}
	if err != nil {
		return ordering.Result{}, err
	}
	return s.Move(ctx, move)
}

// ChangeColumn moves a task to the end of another column through the
// single-task endpoint, then re-fetches.
func (s *Store) ChangeColumn(ctx context.Context, taskID, columnID uint) error {
	if _, err := s.gw.ChangeTaskColumn(ctx, taskID, columnID); err != nil {
		return s.failed("change-column", err)
	}
	return s.Refresh(ctx)
}

// MoveColumn puts a column at index on the active board.
func (s *Store) MoveColumn(ctx context.Context, columnID uint, index int) error {
	boardID := s.BoardID()
	if boardID == 0 {
		return ErrNoBoard
	}
	if _, err := s.gw.ReorderColumn(ctx, boardID, columnID, index); err != nil {
		return s.failed("reorder-column", err)
	}
	return s.Refresh(ctx)
}

func (s *Store) failed(op string, err error) error {
	log.WithError(err).WithFields(log.Fields{"op": op, "board_id": s.BoardID()}).Error("gateway call failed")
	return &PersistenceError{Op: op, Err: err}
}

func (s *Store) onBoard(columnID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.current.columns, func(c model.Column) bool { return c.ID == columnID })
}

func (s *Store) allTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := slices.Collect(maps.Values(s.current.tasks))
	slices.SortFunc(tasks, func(a, b model.Task) int { return cmp.Compare(a.ID, b.ID) })
	return tasks
}
