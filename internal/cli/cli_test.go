package cli

import (
	"bytes"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/config"
	"taskboard/internal/gateway"
)

// snapshotOpener serves every command from one miniredis snapshot so state
// carries over between runs like it does against a real server.
func snapshotOpener(t *testing.T) Opener {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return func(*config.Config, bool) (gateway.Gateway, func(), error) {
		return gateway.NewSnapshot(client, "test:boards"), func() {}, nil
	}
}

func runCmd(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd, a := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := run(cmd, a)
	return out.String(), err
}

func TestBoards_ListsDefaultBoard(t *testing.T) {
	open := snapshotOpener(t)

	out, err := runCmd(t, open, "boards")
	require.NoError(t, err)
	assert.Contains(t, out, "* 1\tPlatform Launch (3 columns)")
}

func TestMove_DropOntoTaskTakesItsSlot(t *testing.T) {
	open := snapshotOpener(t)

	_, err := runCmd(t, open, "task", "add", "1", "Write docs")
	require.NoError(t, err)
	_, err = runCmd(t, open, "task", "add", "1", "Ship it", "-s", "tag release")
	require.NoError(t, err)

	out, err := runCmd(t, open, "move", "task-2", "task-1")
	require.NoError(t, err)

	first := strings.Index(out, "[task-2] Ship it")
	second := strings.Index(out, "[task-1] Write docs")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, out, "0. [task-2] Ship it  (0 of 1 subtasks)")

	// state persisted: a fresh run sees the same order
	out, err = runCmd(t, open, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "0. [task-2] Ship it")
	assert.Contains(t, out, "1. [task-1] Write docs")
}

func TestMove_OntoColumnAppends(t *testing.T) {
	open := snapshotOpener(t)
	_, err := runCmd(t, open, "task", "add", "1", "A")
	require.NoError(t, err)

	out, err := runCmd(t, open, "move", "task-1", "column-3")
	require.NoError(t, err)
	assert.Contains(t, out, "== Done [column-3] (1)")
	assert.Contains(t, out, "== Todo [column-1] (0)")
}

func TestMove_OntoItselfIsNoop(t *testing.T) {
	open := snapshotOpener(t)
	_, err := runCmd(t, open, "task", "add", "1", "A")
	require.NoError(t, err)

	out, err := runCmd(t, open, "move", "task-1", "task-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to move")
}

func TestMove_BadIdentifier(t *testing.T) {
	open := snapshotOpener(t)

	_, err := runCmd(t, open, "move", "task-1", "lane-2")
	assert.Error(t, err)
}

func TestTaskStatus_AppendsToColumn(t *testing.T) {
	open := snapshotOpener(t)
	_, err := runCmd(t, open, "task", "add", "2", "Existing")
	require.NoError(t, err)
	_, err = runCmd(t, open, "task", "add", "1", "Mover")
	require.NoError(t, err)

	out, err := runCmd(t, open, "task", "status", "2", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1. [task-2] Mover")
}

func TestSubtaskToggle(t *testing.T) {
	open := snapshotOpener(t)
	_, err := runCmd(t, open, "task", "add", "1", "A", "-s", "one")
	require.NoError(t, err)

	out, err := runCmd(t, open, "subtask", "toggle", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Subtask 1 done")

	out, err = runCmd(t, open, "subtask", "toggle", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Subtask 1 open")
}

func TestBoardCreateAndSelect(t *testing.T) {
	open := snapshotOpener(t)

	out, err := runCmd(t, open, "board", "create", "Roadmap", "-c", "Now", "-c", "Later")
	require.NoError(t, err)
	assert.Contains(t, out, "Created board 2")

	out, err = runCmd(t, open, "--board", "2", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Roadmap [board 2]")
	assert.Contains(t, out, "== Now")
	assert.Contains(t, out, "== Later")
}

func TestBoardCreate_RejectsDuplicateColumns(t *testing.T) {
	open := snapshotOpener(t)

	_, err := runCmd(t, open, "board", "create", "Roadmap", "-c", "Now", "-c", "now")
	assert.Error(t, err)
}

func TestBoardEdit_KeepsMatchingColumns(t *testing.T) {
	open := snapshotOpener(t)
	_, err := runCmd(t, open, "task", "add", "1", "Keep me")
	require.NoError(t, err)

	out, err := runCmd(t, open, "board", "edit", "--name", "Launch", "-c", "todo", "-c", "Review")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch [board 1]")
	assert.Contains(t, out, "== todo [column-1] (1)")
	assert.Contains(t, out, "== Review")
	assert.NotContains(t, out, "Doing")
}

func TestColumnMove(t *testing.T) {
	open := snapshotOpener(t)

	out, err := runCmd(t, open, "column", "move", "3", "0")
	require.NoError(t, err)
	done := strings.Index(out, "== Done")
	todo := strings.Index(out, "== Todo")
	assert.Less(t, done, todo)
}

func TestTaskShow_UnknownTask(t *testing.T) {
	open := snapshotOpener(t)

	_, err := runCmd(t, open, "task", "show", "42")
	assert.ErrorContains(t, err, "task 42 is not on board 1")
}

func TestReplaceColumns(t *testing.T) {
	cols := replaceColumns(gateway.DefaultBoards()[0].Columns, []string{"DONE", "New"})
	require.Len(t, cols, 2)
	assert.Equal(t, uint(3), cols[0].ID)
	assert.Equal(t, "DONE", cols[0].Name)
	assert.Zero(t, cols[1].ID)
}

func TestGatewayReleasedWhenCommandFails(t *testing.T) {
	inner := snapshotOpener(t)
	released := 0
	open := func(cfg *config.Config, local bool) (gateway.Gateway, func(), error) {
		gw, _, err := inner(cfg, local)
		return gw, func() { released++ }, err
	}

	_, err := runCmd(t, open, "task", "show", "42")
	require.Error(t, err)
	assert.Equal(t, 1, released)

	_, err = runCmd(t, open, "boards")
	require.NoError(t, err)
	assert.Equal(t, 2, released)
}
