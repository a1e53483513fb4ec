package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/model"
)

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active board with its columns and tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBoard(cmd.OutOrStdout(), a.store)
			return nil
		},
	}
}

func (a *app) boardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBoards(cmd.OutOrStdout(), a.store)
			return nil
		},
	}
}

func (a *app) boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Create, edit, clear, delete or reset boards",
	}

	var columns []string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board := model.Board{Name: args[0]}
			for _, name := range columns {
				board.Columns = append(board.Columns, model.Column{Name: name})
			}
			if err := model.ValidateBoard(board); err != nil {
				return err
			}
			created, err := a.store.CreateBoard(cmd.Context(), board)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created board %d\n", created.ID)
			return nil
		},
	}
	create.Flags().StringSliceVarP(&columns, "column", "c", nil, "Column names, in order")

	var rename string
	var editColumns []string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Rename the active board and/or replace its columns",
		Long: `Replace the active board's columns with the given list.

Columns whose name matches an existing column (ignoring case) keep their id
and tasks. New names become new columns. Columns left out are deleted
together with their tasks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board := a.activeBoard()
			if board == nil {
				return fmt.Errorf("no board selected")
			}
			if rename != "" {
				board.Name = rename
			}
			if cmd.Flags().Changed("column") {
				board.Columns = replaceColumns(a.store.Columns(), editColumns)
			} else {
				board.Columns = a.store.Columns()
			}
			if err := model.ValidateBoard(*board); err != nil {
				return err
			}
			if _, err := a.store.EditBoard(cmd.Context(), *board); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), a.store)
			return nil
		},
	}
	edit.Flags().StringVar(&rename, "name", "", "New board name")
	edit.Flags().StringSliceVarP(&editColumns, "column", "c", nil, "Column names, in order")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every column and task of the active board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.store.ClearBoard(cmd.Context())
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint(args[0])
			if err != nil {
				return err
			}
			return a.store.DeleteBoard(cmd.Context(), id)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every board and start over from the default board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.ResetBoards(cmd.Context()); err != nil {
				return err
			}
			printBoards(cmd.OutOrStdout(), a.store)
			return nil
		},
	}

	cmd.AddCommand(create, edit, clearCmd, del, reset)
	return cmd
}

func (a *app) columnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Reorder columns",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "move COLUMN_ID INDEX",
		Short: "Move a column to INDEX (-1 for last)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			index, err := parseInt(args[1])
			if err != nil {
				return err
			}
			if err := a.store.MoveColumn(cmd.Context(), columnID, index); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), a.store)
			return nil
		},
	})
	return cmd
}

func (a *app) activeBoard() *model.Board {
	for _, b := range a.store.Boards() {
		if b.ID == a.store.BoardID() {
			return &b
		}
	}
	return nil
}

// replaceColumns keeps the id and color of existing columns whose name
// matches one of names.
func replaceColumns(existing []model.Column, names []string) []model.Column {
	byName := make(map[string]model.Column, len(existing))
	for _, c := range existing {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = c
	}
	columns := make([]model.Column, 0, len(names))
	for _, name := range names {
		c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			columns = append(columns, model.Column{Name: name})
			continue
		}
		columns = append(columns, model.Column{ID: c.ID, Name: name, Color: c.Color})
	}
	return columns
}
