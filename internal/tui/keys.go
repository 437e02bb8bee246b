package tui

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jmespath/go-jmespath"

	"github.com/tiendactl/tiendactl/internal/catalog"
)

// handleKeyPress dispatches a key event based on the current mode.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeFilter:
		return m.handleFilterKeys(msg)
	case ModeAlert:
		return m.handleAlertKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeBulkReview:
		return m.handleBulkReviewKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeInspect:
		return m.handleInspectKeys(msg)
	case ModeHelp:
		m.mode = ModeTable
		return nil
	default:
		return m.handleTableKeys(msg)
	}
}

func (m *Model) handleTableKeys(msg tea.KeyMsg) tea.Cmd {
	res := m.current()

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit

	case "tab", "]":
		m.resIndex = (m.resIndex + 1) % len(m.resources)
		m.rebuildTable()
		return m.listCmd()

	case "shift+tab", "[":
		m.resIndex = (m.resIndex - 1 + len(m.resources)) % len(m.resources)
		m.rebuildTable()
		return m.listCmd()

	case "r":
		return m.listCmd()

	case "n":
		if res.ReadOnly() {
			m.statusMsg = fmt.Sprintf("%s is read only", res.Title())
			return nil
		}
		res.ResetDraft()
		m.openForm(true)
		return nil

	case "enter", "e":
		if res.ReadOnly() || len(res.FormFields()) == 0 {
			return nil
		}
		if id := m.selectedID(); id != nil {
			m.awaitForm = true
			return m.showCmd(*id)
		}
		return nil

	case "d":
		if res.ReadOnly() {
			return nil
		}
		if id := m.selectedID(); id != nil {
			m.confirmDelete(*id)
			m.deliverAlert()
		}
		return nil

	case "u":
		if !res.Restorable() {
			return nil
		}
		if id := m.selectedID(); id != nil {
			return m.restoreCmd(*id)
		}
		return nil

	case "f":
		if len(res.FilterFields()) > 0 {
			m.openFilter()
		}
		return nil

	case "x":
		res.ClearFilters()
		return m.listCmd()

	case "left", "h":
		pag := res.Pagination()
		if pag.CurrentPage > 1 {
			res.SetPage(pag.CurrentPage - 1)
			return m.listCmd()
		}
		return nil

	case "right", "l":
		pag := res.Pagination()
		if pag.CurrentPage < pag.TotalPages {
			res.SetPage(pag.CurrentPage + 1)
			return m.listCmd()
		}
		return nil

	case "B":
		if sub, ok := res.(*catalog.SubcategoryResource); ok && sub.StagedCount() > 0 {
			m.bulkIndex = 0
			m.mode = ModeBulkReview
		}
		return nil

	case "H":
		if m.histMgr != nil {
			return m.loadHistoryCmd()
		}
		m.statusMsg = "history is disabled"
		return nil

	case "I":
		m.openInspect()
		return nil

	case "y":
		if id := m.selectedID(); id != nil {
			m.copyToClipboard(fmt.Sprintf("%d", *id))
		}
		return nil

	case "?":
		m.mode = ModeHelp
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// openForm builds the input set from the resource's form fields and the
// current draft values.
func (m *Model) openForm(creating bool) {
	res := m.current()
	fields := res.FormFields()
	values := res.DraftValues()

	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Label
		in.CharLimit = 512
		if i < len(values) {
			in.SetValue(values[i])
		}
		if i == 0 {
			in.Focus()
		}
		m.inputs[i] = in
	}
	m.focusIndex = 0
	m.formErr = ""
	m.creating = creating
	m.mode = ModeForm
	if creating {
		m.ui.OpenModal()
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	res := m.current()

	switch msg.String() {
	case "esc":
		res.ResetDraft()
		m.ui.CloseModal()
		m.mode = ModeTable
		return nil

	case "tab", "down":
		m.focusField(m.focusIndex + 1)
		return nil

	case "shift+tab", "up":
		m.focusField(m.focusIndex - 1)
		return nil

	case "ctrl+b":
		sub, ok := res.(*catalog.SubcategoryResource)
		if !ok || !m.creating {
			return nil
		}
		if err := res.ApplyDraftValues(m.formValues()); err != nil {
			m.formErr = err.Error()
			return nil
		}
		if err := sub.StageDraft(); err != nil {
			m.formErr = err.Error()
			return nil
		}
		m.statusMsg = fmt.Sprintf("%d staged for bulk create", sub.StagedCount())
		m.openForm(true)
		return nil

	case "enter":
		if err := res.ApplyDraftValues(m.formValues()); err != nil {
			m.formErr = err.Error()
			return nil
		}
		m.formErr = ""
		if m.creating {
			return m.createCmd()
		}
		return m.updateCmd()
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return cmd
}

func (m *Model) focusField(i int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focusIndex].Focus()
}

func (m *Model) formValues() []string {
	values := make([]string, len(m.inputs))
	for i := range m.inputs {
		values[i] = m.inputs[i].Value()
	}
	return values
}

// openFilter builds the filter bar inputs from the staged filter values.
func (m *Model) openFilter() {
	res := m.current()
	fields := res.FilterFields()
	values := res.FilterValues()

	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Label
		in.CharLimit = 256
		if i < len(values) {
			in.SetValue(values[i])
		}
		if i == 0 {
			in.Focus()
		}
		m.inputs[i] = in
	}
	m.focusIndex = 0
	m.formErr = ""
	m.mode = ModeFilter
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	res := m.current()

	switch msg.String() {
	case "esc":
		m.mode = ModeTable
		return nil

	case "tab", "down":
		m.focusField(m.focusIndex + 1)
		return nil

	case "shift+tab", "up":
		m.focusField(m.focusIndex - 1)
		return nil

	case "ctrl+x":
		res.ClearFilters()
		m.mode = ModeTable
		return m.listCmd()

	case "enter":
		for i, f := range res.FilterFields() {
			res.StageFilter(f.Key, m.inputs[i].Value())
		}
		res.ApplyStagedFilters()
		m.mode = ModeTable
		return m.listCmd()
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return cmd
}

func (m *Model) handleAlertKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", "q", " ":
		m.alert = nil
		m.mode = ModeTable
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "y":
		action := m.alert.Action
		m.alert = nil
		m.mode = ModeTable
		return runAlertAction(action)

	case "esc", "n", "q":
		m.alert = nil
		m.mode = ModeTable
	}
	return nil
}

func (m *Model) handleBulkReviewKeys(msg tea.KeyMsg) tea.Cmd {
	sub, ok := m.current().(*catalog.SubcategoryResource)
	if !ok {
		m.mode = ModeTable
		return nil
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = ModeTable

	case "up", "k":
		if m.bulkIndex > 0 {
			m.bulkIndex--
		}

	case "down", "j":
		if m.bulkIndex < sub.StagedCount()-1 {
			m.bulkIndex++
		}

	case "c":
		sub.ClearStage()
		m.mode = ModeTable
		m.statusMsg = "bulk stage cleared"

	case "enter":
		m.mode = ModeTable
		return m.bulkCreateCmd(sub)
	}
	return nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "H":
		m.mode = ModeTable

	case "up", "k":
		if m.histIndex > 0 {
			m.histIndex--
		}

	case "down", "j":
		if m.histIndex < len(m.histEntries)-1 {
			m.histIndex++
		}

	case "C":
		if m.histMgr != nil {
			if err := m.histMgr.Clear(); err != nil {
				m.histErr = err.Error()
				return nil
			}
			m.histEntries = nil
			m.histIndex = 0
		}
	}
	return nil
}

// openInspect opens the query prompt over the last response body.
func (m *Model) openInspect() {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "results[0].name"
	in.CharLimit = 256
	in.Focus()
	m.inspectInput = in
	m.inspectResult = ""
	m.inspectErr = ""
	m.mode = ModeInspect
}

func (m *Model) handleInspectKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeTable
		return nil

	case "enter":
		m.evaluateInspect()
		return nil

	case "ctrl+y":
		m.copyToClipboard(m.inspectResult)
		return nil
	}

	var cmd tea.Cmd
	m.inspectInput, cmd = m.inspectInput.Update(msg)
	return cmd
}

// copyToClipboard writes text to the system clipboard and reports the
// outcome in the status bar.
func (m *Model) copyToClipboard(text string) {
	if text == "" {
		m.statusMsg = "nothing to copy"
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.statusMsg = fmt.Sprintf("failed to copy: %v", err)
		return
	}
	m.statusMsg = "copied to clipboard"
}

// evaluateInspect runs the JMESPath expression against the most recent
// response body.
func (m *Model) evaluateInspect() {
	body := m.client.LastBody()
	if len(body) == 0 {
		m.inspectErr = "no response captured yet"
		return
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		m.inspectErr = fmt.Sprintf("last response is not JSON: %v", err)
		return
	}

	expr := m.inspectInput.Value()
	if expr == "" {
		expr = "@"
	}

	result, err := jmespath.Search(expr, doc)
	if err != nil {
		m.inspectErr = fmt.Sprintf("bad expression: %v", err)
		return
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		m.inspectErr = err.Error()
		return
	}
	m.inspectErr = ""
	m.inspectResult = string(pretty)
}
