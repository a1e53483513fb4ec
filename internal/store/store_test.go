package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/dragdrop"
	"taskboard/internal/gateway"
	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

const (
	todo  uint = 1
	doing uint = 2
	done  uint = 3
)

// faultyGateway fails chosen calls of a working gateway.
type faultyGateway struct {
	gateway.Gateway
	changeOrderErr error
	listTasksErr   error
	commits        int
	block          chan struct{}
}

func (f *faultyGateway) ChangeOrder(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	f.commits++
	if f.block != nil {
		<-f.block
	}
	if f.changeOrderErr != nil {
		return nil, f.changeOrderErr
	}
	return f.Gateway.ChangeOrder(ctx, tasks)
}

func (f *faultyGateway) ListTasks(ctx context.Context, boardID uint) ([]model.Task, error) {
	if f.listTasksErr != nil {
		return nil, f.listTasksErr
	}
	return f.Gateway.ListTasks(ctx, boardID)
}

func newTestStore(t *testing.T) (*Store, *faultyGateway) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gw := &faultyGateway{Gateway: gateway.NewSnapshot(client, "kanban:boards")}
	s := New(gw)
	require.NoError(t, s.LoadBoards(context.Background()))
	return s, gw
}

func seed(t *testing.T, s *Store, columnID uint, titles ...string) []model.Task {
	t.Helper()
	var out []model.Task
	for _, title := range titles {
		task, err := s.AddTask(context.Background(), model.Task{ColumnID: columnID, Title: title})
		require.NoError(t, err)
		out = append(out, *task)
	}
	return out
}

func ids(tasks []model.Task) []uint {
	out := make([]uint, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestStore_LoadBoardsSelectsFirst(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, uint(1), s.BoardID())
	assert.Len(t, s.Columns(), 3)
	assert.True(t, s.Synced())
}

func TestStore_MoveToEmptyColumn(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	t1 := seed(t, s, todo, "T1")[0]

	res, err := s.Move(ctx, ordering.ToColumn(t1.ID, doing))

	require.NoError(t, err)
	assert.Len(t, res.Changed, 1)
	assert.Empty(t, s.TasksInColumn(todo))
	got, ok := s.Task(t1.ID)
	require.True(t, ok)
	assert.Equal(t, model.Placement{ColumnID: doing, Order: 0}, got.Placement())
	assert.True(t, s.Synced())
}

func TestStore_DropOntoTaskTakesItsSlot(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	tasks := seed(t, s, todo, "A", "B", "C")

	_, err := s.Drop(ctx, dragdrop.DropEvent{
		Active: dragdrop.TaskID(tasks[0].ID),
		Over:   dragdrop.TaskID(tasks[2].ID),
	})

	require.NoError(t, err)
	assert.Equal(t, []uint{tasks[1].ID, tasks[2].ID, tasks[0].ID}, ids(s.TasksInColumn(todo)))
}

func TestStore_DropOnItselfIsNoop(t *testing.T) {
	s, gw := newTestStore(t)
	tasks := seed(t, s, todo, "A")

	res, err := s.Drop(context.Background(), dragdrop.DropEvent{
		Active: dragdrop.TaskID(tasks[0].ID),
		Over:   dragdrop.TaskID(tasks[0].ID),
	})

	require.NoError(t, err)
	assert.True(t, res.Noop())
	assert.Zero(t, gw.commits)
}

func TestStore_MoveToSamePositionSkipsGateway(t *testing.T) {
	s, gw := newTestStore(t)
	tasks := seed(t, s, todo, "A", "B")

	res, err := s.Move(context.Background(), ordering.ToColumn(tasks[1].ID, todo))

	require.NoError(t, err)
	assert.True(t, res.Noop())
	assert.Zero(t, gw.commits)
}

func TestStore_MoveUnknownTask(t *testing.T) {
	s, gw := newTestStore(t)

	_, err := s.Move(context.Background(), ordering.ToColumn(404, todo))

	assert.ErrorIs(t, err, ordering.ErrTaskNotFound)
	assert.Zero(t, gw.commits)
}

func TestStore_FailedCommitResyncsFromGateway(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	tasks := seed(t, s, todo, "A", "B")
	gw.changeOrderErr = errors.New("connection refused")

	_, err := s.Move(ctx, ordering.ToColumn(tasks[0].ID, doing))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "change-order", perr.Op)
	// The re-fetch put A back where the server still has it.
	got, _ := s.Task(tasks[0].ID)
	assert.Equal(t, model.Placement{ColumnID: todo, Order: 0}, got.Placement())
	assert.True(t, s.Synced())
}

func TestStore_FailedCommitAndRefetchRestoresSnapshot(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	tasks := seed(t, s, todo, "A", "B")
	gw.changeOrderErr = errors.New("connection refused")
	gw.listTasksErr = errors.New("connection refused")

	_, err := s.Move(ctx, ordering.ToColumn(tasks[0].ID, doing))

	assert.Error(t, err)
	assert.Equal(t, ids(tasks), ids(s.TasksInColumn(todo)))
	assert.Empty(t, s.TasksInColumn(doing))
}

func TestStore_CommitLandedButRefetchFails(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	t1 := seed(t, s, todo, "T1")[0]
	gw.listTasksErr = errors.New("network down")

	_, err := s.Move(ctx, ordering.ToColumn(t1.ID, doing))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "list-tasks", perr.Op)
	assert.False(t, s.Synced(), "unconfirmed until a fetch succeeds")
	got, _ := s.Task(t1.ID)
	assert.Equal(t, model.Placement{ColumnID: doing, Order: 0}, got.Placement())

	stored, err := gw.Gateway.ListTasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, got.Placement(), stored[0].Placement())

	gw.listTasksErr = nil
	require.NoError(t, s.Refresh(ctx))
	assert.True(t, s.Synced())
	got, _ = s.Task(t1.ID)
	assert.Equal(t, doing, got.ColumnID)
}

func TestStore_MoveToColumnOffBoard(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	t1 := seed(t, s, todo, "T1")[0]

	_, err := s.Move(ctx, ordering.ToColumn(t1.ID, 999))

	assert.ErrorIs(t, err, ordering.ErrColumnNotFound)
	assert.Zero(t, gw.commits)
	assert.True(t, s.Synced())
	visible := 0
	for _, c := range s.Columns() {
		visible += len(c.Tasks)
	}
	assert.Equal(t, 1, visible)
	assert.Equal(t, []uint{t1.ID}, ids(s.TasksInColumn(todo)))
}

func TestStore_DropOnColumnOffBoard(t *testing.T) {
	s, gw := newTestStore(t)
	t1 := seed(t, s, todo, "T1")[0]

	_, err := s.Drop(context.Background(), dragdrop.DropEvent{
		Active: dragdrop.TaskID(t1.ID),
		Over:   dragdrop.ColumnID(999),
	})

	assert.ErrorIs(t, err, ordering.ErrColumnNotFound)
	assert.Zero(t, gw.commits)
}

func TestStore_OptimisticStateUntilRefetch(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	tasks := seed(t, s, todo, "A", "B")
	gw.listTasksErr = errors.New("timeout")

	res, err := ordering.ComputeReorder(s.allTasks(), ordering.ToColumn(tasks[0].ID, doing))
	require.NoError(t, err)
	s.ApplyOptimistic(res.Changed)
	err = s.Commit(ctx, res.Changed)

	// Commit landed but the re-fetch did not: the optimistic view stays.
	assert.Error(t, err)
	assert.False(t, s.Synced())
	assert.Equal(t, []uint{tasks[0].ID}, ids(s.TasksInColumn(doing)))

	gw.listTasksErr = nil
	require.NoError(t, s.Rollback(ctx))
	assert.True(t, s.Synced())
	assert.Equal(t, []uint{tasks[0].ID}, ids(s.TasksInColumn(doing)))
}

func TestStore_SecondMoveWhileInFlight(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	tasks := seed(t, s, todo, "A", "B")
	gw.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Move(ctx, ordering.ToColumn(tasks[0].ID, doing))
	}()
	require.Eventually(t, func() bool { return !s.Synced() }, time.Second, time.Millisecond)

	_, err := s.Move(ctx, ordering.ToColumn(tasks[1].ID, done))
	assert.ErrorIs(t, err, ErrReorderInFlight)

	close(gw.block)
	wg.Wait()
	got, _ := s.Task(tasks[0].ID)
	assert.Equal(t, doing, got.ColumnID)
}

func TestStore_ChangeColumnAppends(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := seed(t, s, todo, "A")[0]
	seed(t, s, doing, "X")

	require.NoError(t, s.ChangeColumn(ctx, a.ID, doing))

	got, _ := s.Task(a.ID)
	assert.Equal(t, model.Placement{ColumnID: doing, Order: 1}, got.Placement())
}

func TestStore_BoardLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateBoard(ctx, model.Board{Name: "Roadmap", Columns: []model.Column{{Name: "Now"}, {Name: "Later"}}})
	require.NoError(t, err)
	assert.Equal(t, created.ID, s.BoardID())
	assert.Len(t, s.Boards(), 2)
	assert.Len(t, s.Columns(), 2)

	require.NoError(t, s.ClearBoard(ctx))
	assert.Empty(t, s.Columns())

	require.NoError(t, s.DeleteBoard(ctx, created.ID))
	assert.Equal(t, uint(1), s.BoardID(), "falls back to the remaining board")

	err = s.DeleteBoard(ctx, 1)
	assert.ErrorIs(t, err, gateway.ErrConflict)
}

func TestStore_ToggleSubtask(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	task, err := s.AddTask(ctx, model.Task{ColumnID: todo, Title: "A", Subtasks: []model.Subtask{{Title: "one"}}})
	require.NoError(t, err)

	sub, err := s.ToggleSubtask(ctx, task.Subtasks[0].ID)
	require.NoError(t, err)
	assert.True(t, sub.IsCompleted)

	sub, err = s.ToggleSubtask(ctx, task.Subtasks[0].ID)
	require.NoError(t, err)
	assert.False(t, sub.IsCompleted)
}

func TestStore_TaskOpsNeedBoard(t *testing.T) {
	s := New(&faultyGateway{})

	_, err := s.AddTask(context.Background(), model.Task{Title: "x"})
	assert.ErrorIs(t, err, ErrNoBoard)
	_, err = s.Move(context.Background(), ordering.ToColumn(1, 2))
	assert.ErrorIs(t, err, ErrNoBoard)
}
