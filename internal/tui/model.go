// Package tui is the terminal dashboard: one table screen per resource,
// a shared form modal, and a single alert slot, all driven by the generic
// store/controller pairs in the catalog.
package tui

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/catalog"
	"github.com/tiendactl/tiendactl/internal/history"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeTable Mode = iota
	ModeForm
	ModeFilter
	ModeAlert
	ModeConfirm
	ModeBulkReview
	ModeHistory
	ModeInspect
	ModeHelp
)

// Model represents the TUI state
type Model struct {
	resources []catalog.Resource
	resIndex  int

	ui      *UIState
	client  *api.Client
	log     *slog.Logger
	histMgr *history.Manager
	version string
	profile string

	mode   Mode
	width  int
	height int

	table   table.Model
	spinner spinner.Model

	// form and filter state
	inputs     []textinput.Model
	focusIndex int
	formErr    string
	creating   bool
	awaitForm  bool

	// alert state
	alert *resource.Alert

	// bulk review state
	bulkIndex int

	// history state
	histEntries []history.Entry
	histIndex   int
	histErr     string

	// inspect state
	inspectInput  textinput.Model
	inspectResult string
	inspectErr    string

	statusMsg string
}

// NewModel builds the dashboard model. histMgr may be nil when history is
// disabled.
func NewModel(resources []catalog.Resource, ui *UIState, client *api.Client,
	histMgr *history.Manager, log *slog.Logger, version, profile string) *Model {

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		resources: resources,
		ui:        ui,
		client:    client,
		log:       log,
		histMgr:   histMgr,
		version:   version,
		profile:   profile,
		spinner:   sp,
	}
	m.rebuildTable()
	return m
}

func (m *Model) current() catalog.Resource {
	return m.resources[m.resIndex]
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listCmd())
}

// Cleanup closes database connections
func (m *Model) Cleanup() {
	if m.histMgr != nil {
		if err := m.histMgr.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing history database: %v\n", err)
		}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		m.refreshRows()
		if m.awaitForm {
			m.awaitForm = false
			if m.ui.ModalOpen() {
				// the record loaded and the shared modal opened
				m.openForm(false)
				return m, nil
			}
		}
		m.deliverAlert()

	case historyLoadedMsg:
		m.histEntries = msg.entries
		m.histIndex = 0
		m.histErr = ""
		if msg.err != nil {
			m.histErr = msg.err.Error()
		}
		m.mode = ModeHistory
	}

	return m, nil
}

// deliverAlert pulls the pending alert into the foreground. Confirmation
// prompts and plain notifications render differently but share the slot.
func (m *Model) deliverAlert() {
	alert := m.ui.TakeAlert()
	if alert == nil {
		if m.mode == ModeForm && !m.ui.ModalOpen() {
			// the operation closed the shared modal underneath the form
			m.mode = ModeTable
		}
		return
	}
	m.alert = alert
	if alert.Action != nil {
		m.mode = ModeConfirm
	} else {
		m.mode = ModeAlert
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeForm:
		return m.renderForm()
	case ModeFilter:
		return m.renderFilter()
	case ModeAlert:
		return m.renderAlert()
	case ModeConfirm:
		return m.renderConfirm()
	case ModeBulkReview:
		return m.renderBulkReview()
	case ModeHistory:
		return m.renderHistory()
	case ModeInspect:
		return m.renderInspect()
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// Custom message types
type opDoneMsg struct {
	err error
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}
