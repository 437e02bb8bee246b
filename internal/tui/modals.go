package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tiendactl/tiendactl/internal/catalog"
)

// placeModal centers a bordered box over the full screen.
func (m *Model) placeModal(content string, borderColor lipgloss.AdaptiveColor) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderForm renders the create/edit dialog for the active resource.
func (m *Model) renderForm() string {
	res := m.current()

	title := "New " + res.Name()
	if !m.creating {
		title = fmt.Sprintf("Edit %s %s", res.Name(), formatID(res.DraftID()))
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n\n")

	for i, f := range res.FormFields() {
		label := f.Label
		if i == m.focusIndex {
			label = styleActiveTab.Render(label)
		} else {
			label = styleSubtle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n", label, m.inputs[i].View()))
	}

	if m.formErr != "" {
		b.WriteString("\n" + styleError.Render(m.formErr))
	}

	footer := "enter:save  tab:next field  esc:cancel"
	if _, ok := res.(*catalog.SubcategoryResource); ok && m.creating {
		footer = "enter:save  ctrl+b:stage for bulk  tab:next field  esc:cancel"
	}
	b.WriteString("\n\n" + styleSubtle.Render(footer))

	return m.placeModal(b.String(), colorCyan)
}

// renderFilter renders the filter bar dialog.
func (m *Model) renderFilter() string {
	res := m.current()

	var b strings.Builder
	b.WriteString(styleTitle.Render("Filter " + res.Title()))
	b.WriteString("\n\n")

	for i, f := range res.FilterFields() {
		label := f.Label
		if i == m.focusIndex {
			label = styleActiveTab.Render(label)
		} else {
			label = styleSubtle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n", label, m.inputs[i].View()))
	}

	b.WriteString("\n" + styleSubtle.Render("enter:apply  ctrl+x:clear all  esc:cancel"))

	return m.placeModal(b.String(), colorYellow)
}

// renderAlert renders a plain notification.
func (m *Model) renderAlert() string {
	if m.alert == nil {
		return m.renderMain()
	}

	style := alertStyle(m.alert.Level)
	content := style.Render(m.alert.Title) + "\n\n" + m.alert.Text +
		"\n\n" + styleSubtle.Render("enter:dismiss")

	return m.placeModal(content, colorGray)
}

// renderConfirm renders a confirmation prompt.
func (m *Model) renderConfirm() string {
	if m.alert == nil {
		return m.renderMain()
	}

	confirm := m.alert.ConfirmText
	if confirm == "" {
		confirm = "Confirm"
	}
	cancel := m.alert.CancelText
	if cancel == "" {
		cancel = "Cancel"
	}

	content := styleWarning.Render(m.alert.Title) + "\n\n" + m.alert.Text +
		"\n\n" + styleSubtle.Render(fmt.Sprintf("y/enter:%s  n/esc:%s", confirm, cancel))

	return m.placeModal(content, colorYellow)
}

// renderBulkReview renders the staged bulk-create batch.
func (m *Model) renderBulkReview() string {
	sub, ok := m.current().(*catalog.SubcategoryResource)
	if !ok {
		return m.renderMain()
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("Bulk create: %d staged", sub.StagedCount())))
	b.WriteString("\n\n")

	for i, label := range sub.StagedLabels() {
		line := "  " + label
		if i == m.bulkIndex {
			line = "> " + label
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styleSubtle.Render("enter:send batch  c:clear  esc:back"))

	return m.placeModal(b.String(), colorCyan)
}

// renderHistory renders the operation history for the active profile.
func (m *Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Operation history"))
	b.WriteString("\n\n")

	if m.histErr != "" {
		b.WriteString(styleError.Render(m.histErr) + "\n")
	}

	if len(m.histEntries) == 0 {
		b.WriteString(styleSubtle.Render("no operations recorded") + "\n")
	}

	start := 0
	if len(m.histEntries) > 20 {
		start = m.histIndex
		if start > len(m.histEntries)-20 {
			start = len(m.histEntries) - 20
		}
	}
	end := min(start+20, len(m.histEntries))

	for i := start; i < end; i++ {
		e := m.histEntries[i]
		outcome := styleSuccess.Render(e.Outcome)
		if e.Outcome != "success" {
			outcome = styleError.Render(e.Outcome)
		}
		line := fmt.Sprintf("%s  %-18s %-12s %-8s %s",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Entity, e.Operation, outcome, e.Detail)
		if i == m.histIndex {
			line = styleActiveTab.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styleSubtle.Render("j/k:navigate  C:clear  esc:back"))

	return m.placeModal(b.String(), colorGray)
}

// renderInspect renders the last-response query prompt.
func (m *Model) renderInspect() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Inspect last response"))
	b.WriteString("\n\n")
	b.WriteString(m.inspectInput.View())
	b.WriteString("\n\n")

	if m.inspectErr != "" {
		b.WriteString(styleError.Render(m.inspectErr))
	} else if m.inspectResult != "" {
		result := m.inspectResult
		if lines := strings.Split(result, "\n"); len(lines) > m.height-12 {
			result = strings.Join(lines[:m.height-12], "\n") + "\n" + styleSubtle.Render("...")
		}
		b.WriteString(result)
	} else {
		b.WriteString(styleSubtle.Render("enter a JMESPath expression and press enter"))
	}

	b.WriteString("\n\n" + styleSubtle.Render("enter:evaluate  ctrl+y:copy result  esc:back"))

	return m.placeModal(b.String(), colorCyan)
}

// renderHelp renders the key reference.
func (m *Model) renderHelp() string {
	help := []struct{ key, desc string }{
		{"tab / ]", "next resource"},
		{"shift+tab / [", "previous resource"},
		{"j / k", "move selection"},
		{"h / l", "previous / next page"},
		{"n", "new record"},
		{"enter / e", "edit selected record"},
		{"d", "delete selected record (asks first)"},
		{"u", "restore selected record"},
		{"f", "edit filters"},
		{"x", "clear filters"},
		{"r", "reload current page"},
		{"ctrl+b", "stage subcategory for bulk create (in form)"},
		{"B", "review staged bulk batch"},
		{"H", "operation history"},
		{"I", "inspect last response (JMESPath)"},
		{"y", "copy selected record id"},
		{"?", "this help"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("Keys"))
	b.WriteString("\n\n")
	for _, h := range help {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			styleActiveTab.Render(fmt.Sprintf("%-14s", h.key)), h.desc))
	}
	b.WriteString("\n" + styleSubtle.Render("press any key to close"))

	return m.placeModal(b.String(), colorGray)
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}
