package cli

import (
	"fmt"
	"io"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

func printBoards(w io.Writer, st *store.Store) {
	for _, b := range st.Boards() {
		marker := " "
		if b.ID == st.BoardID() {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d\t%s (%d columns)\n", marker, b.ID, b.Name, len(b.Columns))
	}
}

func printBoard(w io.Writer, st *store.Store) {
	for _, b := range st.Boards() {
		if b.ID == st.BoardID() {
			fmt.Fprintf(w, "%s [board %d]\n", b.Name, b.ID)
		}
	}
	columns := st.Columns()
	if len(columns) == 0 {
		fmt.Fprintln(w, "  (no columns)")
	}
	for _, c := range columns {
		fmt.Fprintf(w, "\n== %s [column-%d] (%d)\n", c.Name, c.ID, len(c.Tasks))
		for _, t := range c.Tasks {
			fmt.Fprintf(w, "  %d. [task-%d] %s%s\n", t.Order, t.ID, t.Title, subtaskSummary(t))
		}
	}
}

func printTask(w io.Writer, t model.Task) {
	fmt.Fprintf(w, "[task-%d] %s (column-%d, order %d)\n", t.ID, t.Title, t.ColumnID, t.Order)
	if t.Description != "" {
		fmt.Fprintf(w, "  %s\n", t.Description)
	}
	for _, s := range t.Subtasks {
		check := " "
		if s.IsCompleted {
			check = "x"
		}
		fmt.Fprintf(w, "  [%s] %d %s\n", check, s.ID, s.Title)
	}
}

func subtaskSummary(t model.Task) string {
	if len(t.Subtasks) == 0 {
		return ""
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.IsCompleted {
			done++
		}
	}
	return fmt.Sprintf("  (%d of %d subtasks)", done, len(t.Subtasks))
}
