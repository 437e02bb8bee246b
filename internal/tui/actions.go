package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiendactl/tiendactl/internal/catalog"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Commands run the controller sequences on background goroutines. The
// controller drives the shared UI state itself; the returned message only
// tells the model to repaint and collect the pending alert.

func (m *Model) listCmd() tea.Cmd {
	res := m.current()
	return func() tea.Msg {
		return opDoneMsg{err: res.List(context.Background())}
	}
}

func (m *Model) showCmd(id int64) tea.Cmd {
	res := m.current()
	return func() tea.Msg {
		return opDoneMsg{err: res.Show(context.Background(), id)}
	}
}

func (m *Model) createCmd() tea.Cmd {
	res := m.current()
	return func() tea.Msg {
		return opDoneMsg{err: res.Create(context.Background())}
	}
}

func (m *Model) updateCmd() tea.Cmd {
	res := m.current()
	return func() tea.Msg {
		return opDoneMsg{err: res.Update(context.Background())}
	}
}

func (m *Model) restoreCmd(id int64) tea.Cmd {
	res := m.current()
	return func() tea.Msg {
		return opDoneMsg{err: res.Restore(context.Background(), id)}
	}
}

func (m *Model) bulkCreateCmd(res *catalog.SubcategoryResource) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: res.BulkCreate(context.Background())}
	}
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	mgr := m.histMgr
	return func() tea.Msg {
		entries, err := mgr.Recent(100)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// confirmDelete stages the confirmation alert for the selected record. The
// action closure runs inside a command goroutine only after the user
// confirms; dismissing the prompt discards it.
func (m *Model) confirmDelete(id int64) {
	res := m.current()
	m.ui.Notify(resource.Alert{
		Level:       resource.AlertWarning,
		Title:       "Confirm delete",
		Text:        fmt.Sprintf("Delete %s %d?", res.Name(), id),
		ConfirmText: "Delete",
		CancelText:  "Cancel",
		Action: func() {
			_ = res.Remove(context.Background(), id)
		},
	})
}

// runAlertAction executes a confirmed alert action on a background
// goroutine and repaints when it finishes.
func runAlertAction(action func()) tea.Cmd {
	return func() tea.Msg {
		action()
		return opDoneMsg{}
	}
}

// rebuildTable recreates the bubbles table for the active resource.
func (m *Model) rebuildTable() {
	res := m.current()

	cols := make([]table.Column, 0, len(res.Columns()))
	for _, c := range res.Columns() {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}

	height := m.height - 8
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	m.table = t
	m.refreshRows()
}

// refreshRows reloads the table rows from the active resource's cache.
func (m *Model) refreshRows() {
	res := m.current()
	rows := make([]table.Row, 0)
	for _, r := range res.Rows() {
		rows = append(rows, table.Row(r))
	}
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// selectedID returns the id of the highlighted row, or nil.
func (m *Model) selectedID() *int64 {
	return m.current().RowID(m.table.Cursor())
}
