package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"taskboard/internal/dragdrop"
	"taskboard/internal/model"
)

func (a *app) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, edit, move or delete tasks",
	}

	var description string
	var subtasks []string
	add := &cobra.Command{
		Use:   "add COLUMN_ID TITLE",
		Short: "Add a task to the end of a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			task := model.Task{ColumnID: columnID, Title: args[1], Description: description}
			for _, title := range subtasks {
				task.Subtasks = append(task.Subtasks, model.Subtask{Title: title})
			}
			if err := model.ValidateTask(task); err != nil {
				return err
			}
			created, err := a.store.AddTask(cmd.Context(), task)
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), *created)
			return nil
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "Task description")
	add.Flags().StringSliceVarP(&subtasks, "subtask", "s", nil, "Subtask titles")

	var title, editDescription string
	edit := &cobra.Command{
		Use:   "edit TASK_ID",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.task(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				task.Title = title
			}
			if cmd.Flags().Changed("description") {
				task.Description = editDescription
			}
			updated, err := a.store.EditTask(cmd.Context(), task)
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), *updated)
			return nil
		},
	}
	edit.Flags().StringVarP(&title, "title", "t", "", "New title")
	edit.Flags().StringVarP(&editDescription, "description", "d", "", "New description")

	show := &cobra.Command{
		Use:   "show TASK_ID",
		Short: "Show a task with its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.task(args[0])
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), task)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status TASK_ID COLUMN_ID",
		Short: "Move a task to the end of another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.task(args[0])
			if err != nil {
				return err
			}
			columnID, err := parseUint(args[1])
			if err != nil {
				return err
			}
			if err := a.store.ChangeColumn(cmd.Context(), task.ID, columnID); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), a.store)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint(args[0])
			if err != nil {
				return err
			}
			return a.store.DeleteTask(cmd.Context(), id)
		},
	}

	cmd.AddCommand(add, edit, show, status, del)
	return cmd
}

func (a *app) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move ACTIVE OVER",
		Short: "Drag a task: ACTIVE is task-<id>, OVER is task-<id> or column-<id>",
		Long: `Drop the task ACTIVE onto OVER.

Dropping onto a task puts the moved task in that task's slot. Dropping onto a
column appends it to the column.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.store.Drop(cmd.Context(), dragdrop.DropEvent{Active: args[0], Over: args[1]})
			if err != nil {
				return err
			}
			if res.Noop() {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to move")
				return nil
			}
			printBoard(cmd.OutOrStdout(), a.store)
			return nil
		},
	}
}

func (a *app) subtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Check subtasks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle SUBTASK_ID",
		Short: "Check or uncheck a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint(args[0])
			if err != nil {
				return err
			}
			sub, err := a.store.ToggleSubtask(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "open"
			if sub.IsCompleted {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtask %d %s\n", sub.ID, state)
			return nil
		},
	})
	return cmd
}

func (a *app) task(arg string) (model.Task, error) {
	id, err := parseUint(arg)
	if err != nil {
		return model.Task{}, err
	}
	task, ok := a.store.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("task %d is not on board %d", id, a.store.BoardID())
	}
	return task, nil
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 0)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(v), nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
