package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

// Snapshot is the local-only gateway. The whole board array lives in Redis as
// one JSON value under a fixed key and is rewritten on every mutation; there
// are no partial writes. Ids are assigned here from per-kind counters stored
// with the boards, so an id is never handed out twice, even after the entity
// holding it was deleted.
type Snapshot struct {
	rdb *redis.Client
	key string
	mu  sync.Mutex
}

func NewSnapshot(rdb *redis.Client, key string) *Snapshot {
	return &Snapshot{rdb: rdb, key: key}
}

var _ Gateway = (*Snapshot)(nil)

// DefaultBoards is what an empty snapshot or a reset starts from.
func DefaultBoards() []model.Board {
	return []model.Board{{
		ID:   1,
		Name: "Platform Launch",
		Columns: []model.Column{
			{ID: 1, BoardID: 1, Name: "Todo", Color: model.ColumnColors[0], Position: 0},
			{ID: 2, BoardID: 1, Name: "Doing", Color: model.ColumnColors[1], Position: 1},
			{ID: 3, BoardID: 1, Name: "Done", Color: model.ColumnColors[2], Position: 2},
		},
	}}
}

// snapshotDoc is the stored value. Blobs written as a bare board array
// still load; their counters start from the largest ids present.
type snapshotDoc struct {
	Boards []model.Board `json:"boards"`
	IDs    idCounters    `json:"ids"`
}

func (s *Snapshot) load(ctx context.Context) (*snapshotState, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &snapshotState{boards: DefaultBoards()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc snapshotDoc
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &doc.Boards)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshotState{boards: doc.Boards, ids: doc.IDs}, nil
}

func (s *Snapshot) save(ctx context.Context, st *snapshotState) error {
	data, err := json.Marshal(snapshotDoc{Boards: st.boards, IDs: *st.nextIDs()})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.WithFields(log.Fields{"key": s.key, "bytes": len(data)}).Debug("snapshot saved")
	return nil
}

func (s *Snapshot) read(ctx context.Context) (*snapshotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// mutate loads the snapshot, applies fn and saves the result. Nothing is
// written when fn fails.
func (s *Snapshot) mutate(ctx context.Context, fn func(st *snapshotState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.save(ctx, st)
}

func (s *Snapshot) ListBoards(ctx context.Context) ([]model.Board, error) {
	st, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	boards := make([]model.Board, len(st.boards))
	for i, b := range st.boards {
		boards[i] = withoutTasks(b)
	}
	return boards, nil
}

func (s *Snapshot) CreateBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	if err := model.ValidateBoard(board); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var created model.Board
	err := s.mutate(ctx, func(st *snapshotState) error {
		ids := st.nextIDs()
		ids.Board++
		created = model.Board{ID: ids.Board, Name: board.Name, Columns: make([]model.Column, len(board.Columns))}
		for i, c := range board.Columns {
			ids.Column++
			created.Columns[i] = newColumn(ids.Column, created.ID, c, i)
		}
		st.boards = append(st.boards, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Snapshot) UpdateBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	if err := model.ValidateBoard(board); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var updated model.Board
	err := s.mutate(ctx, func(st *snapshotState) error {
		existing := st.board(board.ID)
		if existing == nil {
			return fmt.Errorf("board %d: %w", board.ID, ErrNotFound)
		}
		current := make(map[uint]model.Column, len(existing.Columns))
		for _, c := range existing.Columns {
			current[c.ID] = c
		}

		ids := st.nextIDs()
		columns := make([]model.Column, 0, len(board.Columns))
		for i, c := range board.Columns {
			if c.ID == 0 {
				ids.Column++
				columns = append(columns, newColumn(ids.Column, board.ID, c, i))
				continue
			}
			old, ok := current[c.ID]
			if !ok {
				return fmt.Errorf("column %d is not on board %d: %w", c.ID, board.ID, ErrInvalid)
			}
			old.Name = c.Name
			if c.Color != "" {
				old.Color = c.Color
			}
			old.Position = i
			columns = append(columns, old)
		}

		existing.Name = board.Name
		existing.Columns = columns
		updated = withoutTasks(*existing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Snapshot) ClearBoard(ctx context.Context, boardID uint) (*model.Board, error) {
	var cleared model.Board
	err := s.mutate(ctx, func(st *snapshotState) error {
		b := st.board(boardID)
		if b == nil {
			return fmt.Errorf("board %d: %w", boardID, ErrNotFound)
		}
		b.Columns = []model.Column{}
		cleared = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cleared, nil
}

func (s *Snapshot) DeleteBoard(ctx context.Context, boardID uint) (*model.Board, error) {
	var deleted model.Board
	err := s.mutate(ctx, func(st *snapshotState) error {
		i := slices.IndexFunc(st.boards, func(b model.Board) bool { return b.ID == boardID })
		if i < 0 {
			return fmt.Errorf("board %d: %w", boardID, ErrNotFound)
		}
		if len(st.boards) == 1 {
			return fmt.Errorf("at least one board must remain: %w", ErrConflict)
		}
		deleted = withoutTasks(st.boards[i])
		st.boards = slices.Delete(st.boards, i, i+1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (s *Snapshot) ResetBoards(ctx context.Context) ([]model.Board, error) {
	err := s.mutate(ctx, func(st *snapshotState) error {
		st.reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListBoards(ctx)
}

func (s *Snapshot) ListColumns(ctx context.Context, boardID uint) ([]model.Column, error) {
	st, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	b := st.board(boardID)
	if b == nil {
		return []model.Column{}, nil
	}
	return ordering.SortColumns(b.Columns), nil
}

func (s *Snapshot) ReorderColumn(ctx context.Context, boardID, columnID uint, index int) ([]model.Column, error) {
	var columns []model.Column
	err := s.mutate(ctx, func(st *snapshotState) error {
		b := st.board(boardID)
		if b == nil {
			return fmt.Errorf("board %d: %w", boardID, ErrNotFound)
		}
		next, err := ordering.MoveColumn(b.Columns, columnID, index)
		if err != nil {
			return fmt.Errorf("%v: %w", err, ErrNotFound)
		}
		b.Columns = next
		columns = next
		return nil
	})
	return columns, err
}

func (s *Snapshot) ListTasks(ctx context.Context, boardID uint) ([]model.Task, error) {
	st, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	b := st.board(boardID)
	if b == nil {
		return []model.Task{}, nil
	}
	return boardTasks(*b), nil
}

func (s *Snapshot) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := model.ValidateTask(task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var created model.Task
	err := s.mutate(ctx, func(st *snapshotState) error {
		b, c := st.column(task.ColumnID)
		if c == nil {
			return fmt.Errorf("column %d: %w", task.ColumnID, ErrNotFound)
		}
		ids := st.nextIDs()
		ids.Task++
		created = model.Task{
			ID:          ids.Task,
			ColumnID:    c.ID,
			Title:       task.Title,
			Description: task.Description,
			Order:       ordering.NextOrder(c.Tasks, c.ID),
			Subtasks:    make([]model.Subtask, len(task.Subtasks)),
		}
		for i, sub := range task.Subtasks {
			ids.Subtask++
			created.Subtasks[i] = model.Subtask{ID: ids.Subtask, TaskID: created.ID, Title: sub.Title, IsCompleted: sub.IsCompleted}
		}
		setBoardTasks(b, append(boardTasks(*b), created))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask edits title, description and subtasks. Column and order are
// left untouched.
func (s *Snapshot) UpdateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := model.ValidateTask(task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var updated model.Task
	err := s.mutate(ctx, func(st *snapshotState) error {
		b, existing := st.task(task.ID)
		if existing == nil {
			return fmt.Errorf("task %d: %w", task.ID, ErrNotFound)
		}
		current := make(map[uint]bool, len(existing.Subtasks))
		for _, sub := range existing.Subtasks {
			current[sub.ID] = true
		}

		ids := st.nextIDs()
		subtasks := make([]model.Subtask, len(task.Subtasks))
		for i, sub := range task.Subtasks {
			id := sub.ID
			if id == 0 || !current[id] {
				ids.Subtask++
				id = ids.Subtask
			}
			subtasks[i] = model.Subtask{ID: id, TaskID: task.ID, Title: sub.Title, IsCompleted: sub.IsCompleted}
		}

		tasks := boardTasks(*b)
		for i := range tasks {
			if tasks[i].ID == task.ID {
				tasks[i].Title = task.Title
				tasks[i].Description = task.Description
				tasks[i].Subtasks = subtasks
				updated = tasks[i]
			}
		}
		setBoardTasks(b, tasks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Snapshot) ChangeTaskColumn(ctx context.Context, taskID, columnID uint) (*model.Task, error) {
	var moved model.Task
	err := s.mutate(ctx, func(st *snapshotState) error {
		b, t := st.task(taskID)
		if t == nil {
			return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		if to, c := st.column(columnID); c == nil || to.ID != b.ID {
			return fmt.Errorf("column %d on board %d: %w", columnID, b.ID, ErrNotFound)
		}
		res, err := ordering.ComputeReorder(boardTasks(*b), ordering.ToColumn(taskID, columnID))
		if err != nil {
			return err
		}
		setBoardTasks(b, res.Tasks)
		_, t = st.task(taskID)
		moved = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

func (s *Snapshot) DeleteTask(ctx context.Context, taskID uint) (*model.Task, error) {
	var deleted model.Task
	err := s.mutate(ctx, func(st *snapshotState) error {
		b, t := st.task(taskID)
		if t == nil {
			return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		deleted = *t
		res, err := ordering.Remove(boardTasks(*b), taskID)
		if err != nil {
			return err
		}
		setBoardTasks(b, res.Tasks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// ChangeOrder overlays the given placements on the board and stores the
// result only when every column stays contiguous.
func (s *Snapshot) ChangeOrder(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	if len(tasks) == 0 {
		return []model.Task{}, nil
	}
	var result []model.Task
	err := s.mutate(ctx, func(st *snapshotState) error {
		b, first := st.task(tasks[0].ID)
		if first == nil {
			return fmt.Errorf("task %d: %w", tasks[0].ID, ErrNotFound)
		}
		for _, t := range tasks {
			if owner, found := st.task(t.ID); found == nil || owner.ID != b.ID {
				return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
			}
			if owner, c := st.column(t.ColumnID); c == nil || owner.ID != b.ID {
				return fmt.Errorf("column %d: %w", t.ColumnID, ErrNotFound)
			}
		}
		next := ordering.Apply(boardTasks(*b), tasks)
		if err := ordering.Validate(next); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		setBoardTasks(b, next)
		result = boardTasks(*b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Snapshot) SetSubtaskCompleted(ctx context.Context, subtaskID uint, completed bool) (*model.Subtask, error) {
	var subtask model.Subtask
	err := s.mutate(ctx, func(st *snapshotState) error {
		for bi := range st.boards {
			for ci := range st.boards[bi].Columns {
				tasks := st.boards[bi].Columns[ci].Tasks
				for ti := range tasks {
					for si := range tasks[ti].Subtasks {
						if tasks[ti].Subtasks[si].ID == subtaskID {
							tasks[ti].Subtasks[si].IsCompleted = completed
							subtask = tasks[ti].Subtasks[si]
							return nil
						}
					}
				}
			}
		}
		return fmt.Errorf("subtask %d: %w", subtaskID, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

type snapshotState struct {
	boards []model.Board
	ids    idCounters
}

// idCounters holds the last id handed out per entity kind.
type idCounters struct {
	Board   uint `json:"board"`
	Column  uint `json:"column"`
	Task    uint `json:"task"`
	Subtask uint `json:"subtask"`
}

// nextIDs returns the counters, raised to cover every id present. Callers
// increment a counter and use its new value.
func (st *snapshotState) nextIDs() *idCounters {
	ids := &st.ids
	for _, b := range st.boards {
		ids.Board = max(ids.Board, b.ID)
		for _, c := range b.Columns {
			ids.Column = max(ids.Column, c.ID)
			for _, t := range c.Tasks {
				ids.Task = max(ids.Task, t.ID)
				for _, sub := range t.Subtasks {
					ids.Subtask = max(ids.Subtask, sub.ID)
				}
			}
		}
	}
	return ids
}

// reset replaces every board with the default board under fresh ids.
func (st *snapshotState) reset() {
	ids := st.nextIDs()
	boards := DefaultBoards()
	for i := range boards {
		ids.Board++
		boards[i].ID = ids.Board
		for j := range boards[i].Columns {
			ids.Column++
			boards[i].Columns[j].ID = ids.Column
			boards[i].Columns[j].BoardID = ids.Board
		}
	}
	st.boards = boards
}

func (st *snapshotState) board(id uint) *model.Board {
	for i := range st.boards {
		if st.boards[i].ID == id {
			return &st.boards[i]
		}
	}
	return nil
}

func (st *snapshotState) column(id uint) (*model.Board, *model.Column) {
	for i := range st.boards {
		for j := range st.boards[i].Columns {
			if st.boards[i].Columns[j].ID == id {
				return &st.boards[i], &st.boards[i].Columns[j]
			}
		}
	}
	return nil, nil
}

func (st *snapshotState) task(id uint) (*model.Board, *model.Task) {
	for i := range st.boards {
		for j := range st.boards[i].Columns {
			tasks := st.boards[i].Columns[j].Tasks
			for k := range tasks {
				if tasks[k].ID == id {
					return &st.boards[i], &tasks[k]
				}
			}
		}
	}
	return nil, nil
}

func newColumn(id, boardID uint, c model.Column, position int) model.Column {
	color := c.Color
	if color == "" {
		color = model.RandomColumnColor()
	}
	return model.Column{ID: id, BoardID: boardID, Name: c.Name, Color: color, Position: position}
}

// boardTasks flattens the tasks nested in a board's columns, column by column
// in order.
func boardTasks(b model.Board) []model.Task {
	var tasks []model.Task
	for _, c := range ordering.SortColumns(b.Columns) {
		tasks = append(tasks, ordering.ColumnTasks(c.Tasks, c.ID)...)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

// setBoardTasks nests tasks back under their columns, sorted by order.
func setBoardTasks(b *model.Board, tasks []model.Task) {
	for i := range b.Columns {
		b.Columns[i].Tasks = ordering.ColumnTasks(tasks, b.Columns[i].ID)
	}
}

func withoutTasks(b model.Board) model.Board {
	out := b
	out.Columns = make([]model.Column, len(b.Columns))
	for i, c := range ordering.SortColumns(b.Columns) {
		c.Tasks = nil
		out.Columns[i] = c
	}
	return out
}
