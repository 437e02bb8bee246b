package tui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/catalog"
	"github.com/tiendactl/tiendactl/internal/mock"
	"github.com/tiendactl/tiendactl/internal/resource"
)

func newTestModel(t *testing.T) (*Model, *UIState) {
	t.Helper()
	ui := NewUIState()
	deps := catalog.Deps{
		Effects:  ui,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		PageSize: 10,
	}
	m := NewModel(catalog.All(deps), ui, nil, nil, deps.Log, "test", "default")
	m.width = 120
	m.height = 40
	return m, ui
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadingIsReferenceCounted(t *testing.T) {
	ui := NewUIState()

	ui.BeginLoading()
	ui.BeginLoading()
	assert.True(t, ui.Loading())

	ui.EndLoading()
	assert.True(t, ui.Loading(), "still one operation in flight")

	ui.EndLoading()
	assert.False(t, ui.Loading())

	// extra releases never go negative
	ui.EndLoading()
	ui.BeginLoading()
	assert.True(t, ui.Loading())
}

func TestAlertSlotHoldsOne(t *testing.T) {
	ui := NewUIState()

	ui.Notify(resource.Alert{Title: "first"})
	ui.Notify(resource.Alert{Title: "second"})

	alert := ui.TakeAlert()
	require.NotNil(t, alert)
	assert.Equal(t, "second", alert.Title)
	assert.Nil(t, ui.TakeAlert())
}

func TestDeliverAlertRoutesByAction(t *testing.T) {
	m, ui := newTestModel(t)

	ui.Notify(resource.Alert{Title: "done"})
	m.deliverAlert()
	assert.Equal(t, ModeAlert, m.mode)

	m.mode = ModeTable
	ui.Notify(resource.Alert{Title: "sure?", Action: func() {}})
	m.deliverAlert()
	assert.Equal(t, ModeConfirm, m.mode)
}

func TestFormEscapeResetsDraftAndClosesModal(t *testing.T) {
	m, ui := newTestModel(t)

	m.handleKeyPress(key("n"))
	assert.Equal(t, ModeForm, m.mode)
	assert.True(t, ui.ModalOpen())

	m.inputs[0].SetValue("half-typed")
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ModeTable, m.mode)
	assert.False(t, ui.ModalOpen())
	assert.Equal(t, "", m.current().DraftValues()[0])
}

func TestFormValidationErrorKeepsDialogOpen(t *testing.T) {
	m, ui := newTestModel(t)

	m.handleKeyPress(key("n"))
	require.Equal(t, ModeForm, m.mode)

	// name left empty
	cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, ModeForm, m.mode)
	assert.NotEmpty(t, m.formErr)
	assert.True(t, ui.ModalOpen())
}

func TestReadOnlyResourceRejectsNew(t *testing.T) {
	m, _ := newTestModel(t)

	for i, r := range m.resources {
		if r.ReadOnly() {
			m.resIndex = i
			break
		}
	}
	m.rebuildTable()

	m.handleKeyPress(key("n"))
	assert.Equal(t, ModeTable, m.mode)
	assert.Contains(t, m.statusMsg, "read only")
}

func TestConfirmDismissDiscardsAction(t *testing.T) {
	m, ui := newTestModel(t)

	ran := false
	ui.Notify(resource.Alert{Title: "sure?", Action: func() { ran = true }})
	m.deliverAlert()
	require.Equal(t, ModeConfirm, m.mode)

	cmd := m.handleKeyPress(key("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, ModeTable, m.mode)
	assert.False(t, ran)
	assert.Nil(t, m.alert)
}

func TestConfirmAcceptRunsAction(t *testing.T) {
	m, ui := newTestModel(t)

	ran := false
	ui.Notify(resource.Alert{Title: "sure?", Action: func() { ran = true }})
	m.deliverAlert()

	cmd := m.handleKeyPress(key("y"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, opDoneMsg{}, msg)
	assert.True(t, ran)
}

func TestDeleteKeyAsksBeforeRemoving(t *testing.T) {
	backend := mock.NewServer("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	backend.Seed()

	var deletes int32
	handler := backend.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			atomic.AddInt32(&deletes, 1)
		}
		handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	ui := NewUIState()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret", TokenType: "Bearer"})
	client := api.New(srv.URL, source, 5*time.Second, log)
	deps := catalog.Deps{Client: client, Effects: ui, Log: log, PageSize: 10}

	m := NewModel(catalog.All(deps), ui, client, nil, log, "test", "default")
	m.width = 120
	m.height = 40
	m.rebuildTable()

	require.NoError(t, m.current().List(context.Background()))
	m.refreshRows()
	require.NotNil(t, m.selectedID())

	m.handleKeyPress(key("d"))
	require.Equal(t, ModeConfirm, m.mode)
	require.NotNil(t, m.alert)
	require.NotNil(t, m.alert.Action)
	assert.Equal(t, int32(0), atomic.LoadInt32(&deletes), "no request before confirmation")

	cmd := m.handleKeyPress(key("y"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, int32(1), atomic.LoadInt32(&deletes))
}

func TestCopyResultReportsOutcome(t *testing.T) {
	m, _ := newTestModel(t)

	m.openInspect()
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "nothing to copy", m.statusMsg)

	m.inspectResult = `{"name": "Shoes"}`
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.NotEmpty(t, m.statusMsg)
	assert.NotEqual(t, "nothing to copy", m.statusMsg)
}

func TestTabCyclesResources(t *testing.T) {
	m, _ := newTestModel(t)

	first := m.current().Name()
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	assert.NotEqual(t, first, m.current().Name())

	for range m.resources[1:] {
		m.handleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.Equal(t, first, m.current().Name())
}

func TestHelpOpensAndAnyKeyCloses(t *testing.T) {
	m, _ := newTestModel(t)

	m.handleKeyPress(key("?"))
	assert.Equal(t, ModeHelp, m.mode)

	m.handleKeyPress(key("z"))
	assert.Equal(t, ModeTable, m.mode)
}
