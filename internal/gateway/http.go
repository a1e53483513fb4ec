package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

const defaultTimeout = 10 * time.Second

// HTTP talks to the kanban API server.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP builds a client for baseURL. A nil client gets a default one with a
// 10 second timeout.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

var _ Gateway = (*HTTP)(nil)

type boardRequest struct {
	ID      uint            `json:"id_board,omitempty"`
	Name    string          `json:"name"`
	Columns []columnRequest `json:"columns"`
}

type columnRequest struct {
	ID    uint   `json:"id_column,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type subtaskRequest struct {
	ID          uint   `json:"id_subtask,omitempty"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type taskRequest struct {
	ID          uint             `json:"id_task,omitempty"`
	ColumnID    uint             `json:"id_column,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Subtasks    []subtaskRequest `json:"subtasks"`
}

type placement struct {
	ID       uint `json:"id_task"`
	ColumnID uint `json:"id_column"`
	Order    int  `json:"order"`
}

func newBoardRequest(b model.Board) boardRequest {
	req := boardRequest{ID: b.ID, Name: b.Name, Columns: make([]columnRequest, len(b.Columns))}
	for i, c := range b.Columns {
		req.Columns[i] = columnRequest{ID: c.ID, Name: c.Name, Color: c.Color}
	}
	return req
}

func newTaskRequest(t model.Task) taskRequest {
	req := taskRequest{
		ID:          t.ID,
		ColumnID:    t.ColumnID,
		Title:       t.Title,
		Description: t.Description,
		Subtasks:    make([]subtaskRequest, len(t.Subtasks)),
	}
	for i, s := range t.Subtasks {
		req.Subtasks[i] = subtaskRequest{ID: s.ID, Title: s.Title, IsCompleted: s.IsCompleted}
	}
	return req
}

func (h *HTTP) ListBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := h.do(ctx, http.MethodGet, "/boards", nil, &boards)
	return boards, err
}

func (h *HTTP) CreateBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	req := newBoardRequest(board)
	req.ID = 0
	for i := range req.Columns {
		req.Columns[i].ID = 0
	}
	var created model.Board
	if err := h.do(ctx, http.MethodPost, "/boards", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (h *HTTP) UpdateBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	var updated model.Board
	if err := h.do(ctx, http.MethodPut, "/boards", newBoardRequest(board), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (h *HTTP) ClearBoard(ctx context.Context, boardID uint) (*model.Board, error) {
	var cleared model.Board
	if err := h.do(ctx, http.MethodPut, fmt.Sprintf("/boards/%d", boardID), nil, &cleared); err != nil {
		return nil, err
	}
	return &cleared, nil
}

func (h *HTTP) DeleteBoard(ctx context.Context, boardID uint) (*model.Board, error) {
	var deleted model.Board
	if err := h.do(ctx, http.MethodDelete, fmt.Sprintf("/boards/delete/%d", boardID), nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (h *HTTP) ResetBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := h.do(ctx, http.MethodDelete, "/boards/reset", nil, &boards)
	return boards, err
}

func (h *HTTP) ListColumns(ctx context.Context, boardID uint) ([]model.Column, error) {
	var columns []model.Column
	err := h.do(ctx, http.MethodGet, fmt.Sprintf("/columns/%d", boardID), nil, &columns)
	return columns, err
}

func (h *HTTP) ReorderColumn(ctx context.Context, boardID, columnID uint, index int) ([]model.Column, error) {
	body := map[string]interface{}{"id_column": columnID, "position": index}
	var columns []model.Column
	err := h.do(ctx, http.MethodPost, fmt.Sprintf("/boards/%d/columns/reorder", boardID), body, &columns)
	return columns, err
}

func (h *HTTP) ListTasks(ctx context.Context, boardID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := h.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", boardID), nil, &tasks)
	return tasks, err
}

func (h *HTTP) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	req := newTaskRequest(task)
	req.ID = 0
	var created model.Task
	if err := h.do(ctx, http.MethodPost, "/tasks", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (h *HTTP) UpdateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	var updated model.Task
	if err := h.do(ctx, http.MethodPut, "/tasks", newTaskRequest(task), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (h *HTTP) ChangeTaskColumn(ctx context.Context, taskID, columnID uint) (*model.Task, error) {
	body := map[string]uint{"id_column": columnID}
	var moved model.Task
	if err := h.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), body, &moved); err != nil {
		return nil, err
	}
	return &moved, nil
}

func (h *HTTP) DeleteTask(ctx context.Context, taskID uint) (*model.Task, error) {
	var deleted model.Task
	if err := h.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// ChangeOrder sends only the placement of each task; the server ignores
// everything else anyway.
func (h *HTTP) ChangeOrder(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	body := struct {
		Tasks []placement `json:"tasks"`
	}{Tasks: make([]placement, len(tasks))}
	for i, t := range tasks {
		body.Tasks[i] = placement{ID: t.ID, ColumnID: t.ColumnID, Order: t.Order}
	}

	var result []model.Task
	err := h.do(ctx, http.MethodPut, "/tasks/change-order", body, &result)
	return result, err
}

func (h *HTTP) SetSubtaskCompleted(ctx context.Context, subtaskID uint, completed bool) (*model.Subtask, error) {
	body := map[string]bool{"isCompleted": completed}
	var subtask model.Subtask
	if err := h.do(ctx, http.MethodPut, fmt.Sprintf("/subtasks/%d", subtaskID), body, &subtask); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": resp.Header.Get("X-Request-ID"),
	}).Debug("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
