package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tiendactl/tiendactl/internal/catalog"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Underline(true)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// renderMain renders the table screen for the active resource.
func (m *Model) renderMain() string {
	res := m.current()

	header := m.renderTabs()

	tableBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(m.width - 2).
		Render(m.table.View())

	pag := res.Pagination()
	pagLine := styleSubtle.Render(fmt.Sprintf(
		"page %d/%d  %d records  page size %d",
		pag.CurrentPage, max(pag.TotalPages, 1), pag.Count, pag.PageSize))

	filters := ""
	if active := activeFilterSummary(res.FilterValues(), res.FilterFields()); active != "" {
		filters = styleWarning.Render("filters: " + active)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tableBox,
		lipgloss.JoinHorizontal(lipgloss.Top, pagLine, "  ", filters),
		m.renderStatusBar(),
	)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(m.resources))
	for i, r := range m.resources {
		title := r.Title()
		if i == m.resIndex {
			tabs = append(tabs, styleActiveTab.Render(title))
		} else {
			tabs = append(tabs, styleSubtle.Render(title))
		}
	}
	return " " + strings.Join(tabs, "  ")
}

func (m *Model) renderStatusBar() string {
	parts := []string{styleTitle.Render("tiendactl " + m.version)}

	if m.profile != "" {
		parts = append(parts, styleSubtle.Render("["+m.profile+"]"))
	}

	if m.ui.Loading() {
		parts = append(parts, m.spinner.View()+styleWarning.Render("working..."))
	}

	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}

	parts = append(parts, styleSubtle.Render(
		"tab:switch  n:new  enter:edit  d:delete  u:restore  f:filter  r:reload  ?:help"))

	return " " + strings.Join(parts, "  ")
}

// activeFilterSummary lists the staged non-empty filters as key=value.
func activeFilterSummary(values []string, fields []catalog.FormField) string {
	var parts []string
	for i, f := range fields {
		if i < len(values) && values[i] != "" {
			parts = append(parts, f.Key+"="+values[i])
		}
	}
	return strings.Join(parts, " ")
}

func alertStyle(level resource.AlertLevel) lipgloss.Style {
	switch level {
	case resource.AlertSuccess:
		return styleSuccess
	case resource.AlertWarning:
		return styleWarning
	case resource.AlertError:
		return styleError
	default:
		return styleTitle
	}
}
