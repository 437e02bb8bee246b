package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/logging"
)

// fakeEffects records every coordinator call for assertions.
type fakeEffects struct {
	mu         sync.Mutex
	loading    int
	maxLoading int
	modalOpen  bool
	opens      int
	closes     int
	alerts     []Alert
}

func (f *fakeEffects) BeginLoading() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading++
	if f.loading > f.maxLoading {
		f.maxLoading = f.loading
	}
}

func (f *fakeEffects) EndLoading() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading--
}

func (f *fakeEffects) OpenModal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modalOpen = true
	f.opens++
}

func (f *fakeEffects) CloseModal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modalOpen = false
	f.closes++
}

func (f *fakeEffects) Notify(a Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, a)
}

func (f *fakeEffects) lastAlert() *Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.alerts) == 0 {
		return nil
	}
	a := f.alerts[len(f.alerts)-1]
	return &a
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (f *fakeRecorder) Record(e AuditEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	return api.New(srv.URL, source, 5*time.Second, logging.Discard())
}

func newTestController(t *testing.T, handler http.Handler) (*Controller[widget], *fakeEffects) {
	t.Helper()
	fx := &fakeEffects{}
	store := NewStore(widgetSpec(), 10)
	ctrl := NewController(store, newTestClient(t, handler), fx, logging.Discard())
	return ctrl, fx
}

func listResponse(count int, names ...string) map[string]any {
	results := make([]map[string]any, 0, len(names))
	for i, name := range names {
		results = append(results, map[string]any{"id": i + 1, "name": name, "active": true})
	}
	return map[string]any{"results": results, "count": count, "next": nil, "previous": nil}
}

func TestListSuccess(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/widgets/list/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		json.NewEncoder(w).Encode(listResponse(23, "Rojo", "Verde"))
	})

	ctrl, fx := newTestController(t, handler)
	require.NoError(t, ctrl.List(context.Background()))

	assert.Equal(t, "Bearer test-token", gotAuth)

	pag := ctrl.Store().Pagination()
	assert.Equal(t, 23, pag.Count)
	assert.Equal(t, 3, pag.TotalPages)
	assert.Equal(t, 1, pag.CurrentPage)
	assert.Len(t, ctrl.Store().List(), 2)
	assert.Equal(t, 0, fx.loading, "loading indicator must be released")
}

func TestListOnlySendsNonEmptyFilters(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "color", r.URL.Query().Get("search"))
		_, hasActive := r.URL.Query()["active"]
		assert.False(t, hasActive, "empty filters must not be serialized")
		json.NewEncoder(w).Encode(listResponse(0))
	})

	ctrl, _ := newTestController(t, handler)
	ctrl.Store().SetFilters(map[string]string{"search": "color"})
	require.NoError(t, ctrl.List(context.Background()))
}

func TestListFailureClearsCache(t *testing.T) {
	fail := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(listResponse(2, "Rojo", "Verde"))
	})

	ctrl, fx := newTestController(t, handler)
	require.NoError(t, ctrl.List(context.Background()))
	require.Len(t, ctrl.Store().List(), 2)

	fail = true
	require.Error(t, ctrl.List(context.Background()))

	// never stale data mixed with an error state
	assert.Empty(t, ctrl.Store().List())
	pag := ctrl.Store().Pagination()
	assert.Equal(t, 0, pag.Count)
	assert.Equal(t, 0, pag.TotalPages)
	assert.Equal(t, 0, fx.loading)
}

func TestShowOpensModalOnlyOnSuccess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/widgets/9/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": 9, "name": "Talla", "active": false})
	})

	ctrl, fx := newTestController(t, handler)
	require.NoError(t, ctrl.Show(context.Background(), 9))

	assert.True(t, fx.modalOpen)
	draft := ctrl.Store().Draft()
	require.NotNil(t, draft.ID)
	assert.Equal(t, int64(9), *draft.ID)
	assert.Equal(t, "Talla", draft.Name)
}

func TestShowFailureKeepsModalClosed(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	ctrl, fx := newTestController(t, handler)
	require.Error(t, ctrl.Show(context.Background(), 9))

	assert.False(t, fx.modalOpen)
	assert.Equal(t, 0, fx.opens)
	alert := fx.lastAlert()
	require.NotNil(t, alert)
	assert.Equal(t, AlertError, alert.Level)
}

func TestCreateSuccess(t *testing.T) {
	var listCalls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/widgets/create/":
			require.Equal(t, http.MethodPost, r.Method)
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": 42, "name": "Talla"})
		case "/widgets/list/":
			listCalls++
			json.NewEncoder(w).Encode(listResponse(1, "Talla"))
		default:
			http.NotFound(w, r)
		}
	})

	ctrl, fx := newTestController(t, handler)
	fx.OpenModal()
	ctrl.Store().UpdateDraft(func(w *widget) { w.Name = "Talla" })

	require.NoError(t, ctrl.Create(context.Background()))

	// draft resets to defaults, the list refreshes exactly once, modal closes
	assert.Equal(t, widget{Active: true}, ctrl.Store().Draft())
	assert.Equal(t, 1, listCalls)
	assert.False(t, fx.modalOpen)
	alert := fx.lastAlert()
	require.NotNil(t, alert)
	assert.Equal(t, AlertSuccess, alert.Level)
}

func TestCreateFailureClosesModalWithoutRefresh(t *testing.T) {
	var listCalls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/widgets/create/":
			http.Error(w, `{"name":["required"]}`, http.StatusBadRequest)
		case "/widgets/list/":
			listCalls++
			json.NewEncoder(w).Encode(listResponse(0))
		default:
			http.NotFound(w, r)
		}
	})

	ctrl, fx := newTestController(t, handler)
	fx.OpenModal()

	require.Error(t, ctrl.Create(context.Background()))

	// list is only refreshed after a server-confirmed success; the modal
	// closes regardless of outcome
	assert.Equal(t, 0, listCalls)
	assert.False(t, fx.modalOpen)
	alert := fx.lastAlert()
	require.NotNil(t, alert)
	assert.Equal(t, AlertError, alert.Level)
	assert.Contains(t, alert.Text, "rejected")
	assert.Equal(t, 0, fx.loading)
}

func TestUpdateSuccess(t *testing.T) {
	var listCalls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/widgets/7/update/":
			require.Equal(t, http.MethodPatch, r.Method)
			json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "Color"})
		case "/widgets/list/":
			listCalls++
			json.NewEncoder(w).Encode(listResponse(1, "Color"))
		default:
			http.NotFound(w, r)
		}
	})

	ctrl, fx := newTestController(t, handler)
	id := int64(7)
	ctrl.Store().UpdateDraft(func(w *widget) {
		w.ID = &id
		w.Name = "Color"
	})

	require.NoError(t, ctrl.Update(context.Background()))

	assert.Nil(t, ctrl.Store().DraftID(), "draft resets after a successful update")
	assert.Equal(t, 1, listCalls)
	assert.False(t, fx.modalOpen)
}

func TestUpdateWithoutIDFails(t *testing.T) {
	ctrl, _ := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	assert.Error(t, ctrl.Update(context.Background()))
}

func TestRemoveSuccess(t *testing.T) {
	var listCalls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/widgets/5/delete/":
			require.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		case "/widgets/list/":
			listCalls++
			json.NewEncoder(w).Encode(listResponse(0))
		default:
			http.NotFound(w, r)
		}
	})

	ctrl, fx := newTestController(t, handler)
	require.NoError(t, ctrl.Remove(context.Background(), 5))

	assert.Equal(t, 1, listCalls)
	alert := fx.lastAlert()
	require.NotNil(t, alert)
	assert.Equal(t, AlertSuccess, alert.Level)
}

func TestRemoveFailure(t *testing.T) {
	ctrl, fx := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusConflict)
	}))

	require.Error(t, ctrl.Remove(context.Background(), 5))
	alert := fx.lastAlert()
	require.NotNil(t, alert)
	assert.Equal(t, AlertError, alert.Level)
}

func TestRestore(t *testing.T) {
	var listCalls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/widgets/3/restore/":
			require.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusOK)
		case "/widgets/list/":
			listCalls++
			json.NewEncoder(w).Encode(listResponse(1, "Rojo"))
		default:
			http.NotFound(w, r)
		}
	})

	ctrl, _ := newTestController(t, handler)
	require.NoError(t, ctrl.Restore(context.Background(), 3))
	assert.Equal(t, 1, listCalls)
}

func TestRestoreRejectedForHardDeleteEntities(t *testing.T) {
	spec := widgetSpec()
	spec.HardDelete = true
	fx := &fakeEffects{}
	store := NewStore(spec, 10)
	ctrl := NewController(store, newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})), fx, logging.Discard())

	assert.Error(t, ctrl.Restore(context.Background(), 1))
}

func TestAuditRecording(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/widgets/create/":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": 1})
		case "/widgets/list/":
			json.NewEncoder(w).Encode(listResponse(1, "x"))
		case "/widgets/2/delete/":
			http.Error(w, "locked", http.StatusConflict)
		default:
			http.NotFound(w, r)
		}
	})

	rec := &fakeRecorder{}
	fx := &fakeEffects{}
	store := NewStore(widgetSpec(), 10)
	ctrl := NewController(store, newTestClient(t, handler), fx, logging.Discard()).WithRecorder(rec)

	require.NoError(t, ctrl.Create(context.Background()))
	require.Error(t, ctrl.Remove(context.Background(), 2))

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "create", rec.entries[0].Operation)
	assert.Equal(t, "success", rec.entries[0].Outcome)
	assert.NotEmpty(t, rec.entries[0].RequestID)
	assert.Equal(t, "delete", rec.entries[1].Operation)
	assert.Equal(t, "error", rec.entries[1].Outcome)
}

func TestOverlappingListsKeepLoadingVisible(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(listResponse(0))
	})

	ctrl, fx := newTestController(t, handler)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ctrl.List(context.Background())
		}()
	}

	// all three in flight at once
	require.Eventually(t, func() bool {
		fx.mu.Lock()
		defer fx.mu.Unlock()
		return fx.loading == 3
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()
	assert.Equal(t, 0, fx.loading, "indicator visible until the last operation finishes")
	assert.Equal(t, 3, fx.maxLoading)
}
