package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tiendactl/tiendactl/internal/logging"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret", TokenType: "Bearer"})
	return New(srv.URL, source, 5*time.Second, logging.Discard())
}

func TestQueryEncodeSkipsEmptyFilters(t *testing.T) {
	q := Query{
		Page:     2,
		PageSize: 10,
		Filters:  map[string]string{"search": "color", "status": "", "start_date": "2026-01-01"},
	}

	values, err := url.ParseQuery(q.Encode())
	require.NoError(t, err)

	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "10", values.Get("page_size"))
	assert.Equal(t, "color", values.Get("search"))
	assert.Equal(t, "2026-01-01", values.Get("start_date"))
	_, present := values["status"]
	assert.False(t, present)
}

func TestRecordCasingFallback(t *testing.T) {
	snake := Record{"es_variable": true, "valor_extra": 2.5}
	camel := Record{"esVariable": true, "valorExtra": 2.5}

	for _, r := range []Record{snake, camel} {
		assert.True(t, r.Bool(false, "es_variable", "esVariable"))
		assert.Equal(t, 2.5, r.Float(0, "valor_extra", "valorExtra"))
	}
}

func TestRecordAccessorDefaults(t *testing.T) {
	r := Record{"name": "Talla", "count": float64(3), "ref": "12", "nothing": nil}

	assert.Equal(t, "Talla", r.String("name"))
	assert.Equal(t, "", r.String("missing"))
	assert.True(t, r.Bool(true, "missing"))

	n := r.Int("count")
	require.NotNil(t, n)
	assert.Equal(t, int64(3), *n)

	ref := r.Int("ref")
	require.NotNil(t, ref)
	assert.Equal(t, int64(12), *ref)

	assert.Nil(t, r.Int("missing"))
	assert.Nil(t, r.Int("nothing"))
	assert.Nil(t, r.ID())
}

func TestRecordSub(t *testing.T) {
	r := Record{"tools": map[string]any{"web_search": true}}
	sub := r.Sub("tools")
	require.NotNil(t, sub)
	assert.True(t, sub.Bool(false, "web_search", "webSearch"))
	assert.Nil(t, r.Sub("missing"))
}

func TestCreateSendsJSONWithoutFiles(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rojo", body["name"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "name": "Rojo"})
	})

	c := testClient(t, handler)
	rec, err := c.Create(context.Background(), "marcas", Payload{Fields: map[string]any{"name": "Rojo"}})
	require.NoError(t, err)
	require.NotNil(t, rec.ID())
	assert.Equal(t, int64(1), *rec.ID())
}

func TestCreateSwitchesToMultipartWithFile(t *testing.T) {
	logo := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("png-bytes"), 0644))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Acme", r.FormValue("name"))
		assert.Equal(t, "true", r.FormValue("active"))

		file, header, err := r.FormFile("logo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "logo.png", header.Filename)

		w.WriteHeader(http.StatusCreated)
	})

	c := testClient(t, handler)
	_, err := c.Create(context.Background(), "marcas", Payload{
		Fields: map[string]any{"name": "Acme", "active": true},
		Files:  map[string]Upload{"logo": {Path: logo}},
	})
	require.NoError(t, err)
}

func TestCreateRejectsNon201(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := testClient(t, handler)
	_, err := c.Create(context.Background(), "marcas", Payload{Fields: map[string]any{}})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusOK, statusErr.Status)
}

func TestUpdateAccepts200And201(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated} {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/productos/4/update/", r.URL.Path)
			w.WriteHeader(status)
		})

		c := testClient(t, handler)
		_, err := c.Update(context.Background(), "productos", 4, Payload{Fields: map[string]any{"stock": 5}})
		assert.NoError(t, err, "status %d", status)
	}
}

func TestDeleteAcceptsSoftAndHardStatuses(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusOK} {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(status)
		})

		c := testClient(t, handler)
		assert.NoError(t, c.Delete(context.Background(), "categorias", 2), "status %d", status)
	}
}

func TestBulkCreate(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subcategorias/bulk-create/", r.URL.Path)

		var items []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&items))
		assert.Len(t, items, 2)

		json.NewEncoder(w).Encode(map[string]any{"success_count": 1, "error_count": 1})
	})

	c := testClient(t, handler)
	rec, err := c.BulkCreate(context.Background(), "subcategorias", []map[string]any{
		{"name": "Camisas"},
		{"name": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.Float(0, "success_count"))
	assert.Equal(t, 1.0, rec.Float(0, "error_count"))
}

func TestLastBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}, "count": 0})
	})

	c := testClient(t, handler)
	_, err := c.List(context.Background(), "pedidos", Query{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Contains(t, string(c.LastBody()), `"count":0`)
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "fixed-id")
	assert.Equal(t, "fixed-id", RequestIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(context.Background()))
}
