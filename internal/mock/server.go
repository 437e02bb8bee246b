// Package mock is an in-memory backend for local development. It speaks
// the same endpoint conventions as the real API so the dashboard can run
// against it unchanged.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// record is one stored object. Soft-deleted records stay in the store
// with the deleted flag set so they can be restored.
type record struct {
	fields  map[string]any
	deleted bool
}

type entityStore struct {
	nextID  int64
	order   []int64
	records map[int64]*record
}

func newEntityStore() *entityStore {
	return &entityStore{nextID: 1, records: make(map[int64]*record)}
}

func (s *entityStore) insert(fields map[string]any) int64 {
	id := s.nextID
	s.nextID++
	fields["id"] = id
	s.order = append(s.order, id)
	s.records[id] = &record{fields: fields}
	return id
}

// Server serves the backend conventions from memory.
type Server struct {
	addr       string
	httpServer *http.Server
	log        *slog.Logger

	mu     sync.RWMutex
	stores map[string]*entityStore
}

// namespaces the server knows about. categoria-atributos is the one
// hard-delete namespace; pedidos rejects mutations.
var namespaces = map[string]struct {
	hardDelete bool
	readOnly   bool
}{
	"categorias":          {},
	"subcategorias":       {},
	"atributos":           {},
	"valores-atributo":    {},
	"marcas":              {},
	"categoria-atributos": {hardDelete: true},
	"productos":           {},
	"agentes":             {},
	"ofertas":             {},
	"pedidos":             {readOnly: true},
}

// NewServer creates a mock backend listening on addr.
func NewServer(addr string, log *slog.Logger) *Server {
	stores := make(map[string]*entityStore, len(namespaces))
	for ns := range namespaces {
		stores[ns] = newEntityStore()
	}
	return &Server{addr: addr, log: log, stores: stores}
}

// Seed loads a small dataset into every namespace.
func (s *Server) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.stores["categorias"]
	shoes := categories.insert(map[string]any{"name": "Shoes", "description": "Footwear", "active": true})
	shirts := categories.insert(map[string]any{"name": "Shirts", "descripcion": "Tops", "isActive": true})

	subcategories := s.stores["subcategorias"]
	subcategories.insert(map[string]any{"name": "Boots", "category_id": shoes, "active": true})
	subcategories.insert(map[string]any{"name": "Sandals", "categoria_id": shoes, "active": true})
	subcategories.insert(map[string]any{"name": "T-Shirts", "category_id": shirts, "active": true})

	attributes := s.stores["atributos"]
	size := attributes.insert(map[string]any{"name": "Size", "es_variable": true, "active": true})
	attributes.insert(map[string]any{"name": "Material", "esVariable": false, "active": true})

	values := s.stores["valores-atributo"]
	values.insert(map[string]any{"attribute_id": size, "valor": "S", "active": true})
	values.insert(map[string]any{"attribute_id": size, "value": "M", "valor_extra": 0.5, "active": true})
	values.insert(map[string]any{"attribute_id": size, "valor": "L", "valorExtra": 1.0, "active": true})

	brands := s.stores["marcas"]
	acme := brands.insert(map[string]any{"name": "Acme", "logo_url": "http://localhost/static/acme.png", "active": true})

	s.stores["categoria-atributos"].insert(map[string]any{"category_id": shoes, "attribute_id": size})

	s.stores["productos"].insert(map[string]any{
		"name": "Leather Boot", "sku": "BOOT-001", "price": 89.9, "stock": float64(12),
		"category_id": shoes, "brand_id": acme, "active": true,
	})

	s.stores["agentes"].insert(map[string]any{
		"name": "Storefront Helper", "model": "gpt-4o-mini", "prompt": "You help shoppers.",
		"temperature": 0.7, "active": true,
		"tools": map[string]any{"web_search": false, "catalog_lookup": true, "order_lookup": true},
	})

	s.stores["ofertas"].insert(map[string]any{
		"name": "Summer Sale", "discount_percent": 15.0,
		"starts_at": "2026-06-01", "ends_at": "2026-06-30", "active": true,
	})

	orders := s.stores["pedidos"]
	orders.insert(map[string]any{"customer": "Ana Torres", "status": "paid", "total": 89.9, "created_at": "2026-08-20 10:14:02"})
	orders.insert(map[string]any{"cliente": "Luis Vega", "estado": "pending", "total": 129.5, "created_at": "2026-08-21 16:40:11"})
}

// Start begins serving in the background.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("mock server error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Addr returns the base URL.
func (s *Server) Addr() string {
	return "http://" + s.addr
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		s.fail(w, r, http.StatusNotFound, "unknown path")
		return
	}

	ns := parts[0]
	meta, ok := namespaces[ns]
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("unknown namespace %s", ns))
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "list" && r.Method == http.MethodGet:
		s.handleList(w, r, ns)
	case len(parts) == 2 && parts[1] == "create" && r.Method == http.MethodPost:
		if meta.readOnly {
			s.fail(w, r, http.StatusMethodNotAllowed, "read only")
			return
		}
		s.handleCreate(w, r, ns)
	case len(parts) == 2 && parts[1] == "bulk-create" && r.Method == http.MethodPost:
		if meta.readOnly {
			s.fail(w, r, http.StatusMethodNotAllowed, "read only")
			return
		}
		s.handleBulkCreate(w, r, ns)
	case len(parts) == 2 && r.Method == http.MethodGet:
		s.handleGet(w, r, ns, parts[1])
	case len(parts) == 3 && parts[2] == "update" && r.Method == http.MethodPatch:
		if meta.readOnly {
			s.fail(w, r, http.StatusMethodNotAllowed, "read only")
			return
		}
		s.handleUpdate(w, r, ns, parts[1])
	case len(parts) == 3 && parts[2] == "delete" && r.Method == http.MethodDelete:
		if meta.readOnly {
			s.fail(w, r, http.StatusMethodNotAllowed, "read only")
			return
		}
		s.handleDelete(w, r, ns, parts[1], meta.hardDelete)
	case len(parts) == 3 && parts[2] == "restore" && r.Method == http.MethodPost:
		if meta.hardDelete || meta.readOnly {
			s.fail(w, r, http.StatusMethodNotAllowed, "no restore endpoint")
			return
		}
		s.handleRestore(w, r, ns, parts[1])
	default:
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, ns string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 {
		pageSize = 10
	}

	s.mu.RLock()
	store := s.stores[ns]
	var matched []map[string]any
	for _, id := range store.order {
		rec := store.records[id]
		if rec.deleted {
			continue
		}
		if matchesFilters(rec.fields, q) {
			matched = append(matched, cloneFields(rec.fields))
		}
	}
	s.mu.RUnlock()

	count := len(matched)
	start := (page - 1) * pageSize
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count {
		end = count
	}

	s.respond(w, r, http.StatusOK, map[string]any{
		"results":  matched[start:end],
		"count":    count,
		"next":     nil,
		"previous": nil,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, ns, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "bad id")
		return
	}

	s.mu.RLock()
	var fields map[string]any
	if rec, ok := s.stores[ns].records[id]; ok && !rec.deleted {
		fields = cloneFields(rec.fields)
	}
	s.mu.RUnlock()

	if fields == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("%s %d not found", ns, id))
		return
	}
	s.respond(w, r, http.StatusOK, fields)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, ns string) {
	fields, err := decodeBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validate(ns, fields); msg != "" {
		s.fail(w, r, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	s.stores[ns].insert(fields)
	created := cloneFields(fields)
	s.mu.Unlock()

	s.respond(w, r, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, ns, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "bad id")
		return
	}

	fields, err := decodeBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	var merged map[string]any
	if rec, ok := s.stores[ns].records[id]; ok && !rec.deleted {
		for k, v := range fields {
			if k == "id" {
				continue
			}
			rec.fields[k] = v
		}
		merged = cloneFields(rec.fields)
	}
	s.mu.Unlock()

	if merged == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("%s %d not found", ns, id))
		return
	}
	s.respond(w, r, http.StatusOK, merged)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, ns, rawID string, hard bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "bad id")
		return
	}

	s.mu.Lock()
	store := s.stores[ns]
	rec, ok := store.records[id]
	found := ok && !rec.deleted
	if found {
		if hard {
			delete(store.records, id)
			for i, oid := range store.order {
				if oid == id {
					store.order = append(store.order[:i], store.order[i+1:]...)
					break
				}
			}
		} else {
			rec.deleted = true
		}
	}
	s.mu.Unlock()

	if !found {
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("%s %d not found", ns, id))
		return
	}

	if hard {
		s.respond(w, r, http.StatusOK, map[string]any{"deleted": true})
		return
	}
	s.logRequest(r, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request, ns, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "bad id")
		return
	}

	s.mu.Lock()
	var fields map[string]any
	if rec, ok := s.stores[ns].records[id]; ok {
		rec.deleted = false
		fields = cloneFields(rec.fields)
	}
	s.mu.Unlock()

	if fields == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("%s %d not found", ns, id))
		return
	}
	s.respond(w, r, http.StatusOK, fields)
}

func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request, ns string) {
	var items []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		s.fail(w, r, http.StatusBadRequest, "expected a JSON array")
		return
	}

	success, failed := 0, 0
	s.mu.Lock()
	for _, fields := range items {
		if validate(ns, fields) != "" {
			failed++
			continue
		}
		s.stores[ns].insert(fields)
		success++
	}
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, map[string]any{
		"success_count": success,
		"error_count":   failed,
	})
}

// cloneFields snapshots a record's field map so responses can be encoded
// after the store lock is released.
func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// decodeBody reads a JSON or multipart create/update body into fields.
// Multipart file parts become fake served URLs under their field name.
func decodeBody(r *http.Request) (map[string]any, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("bad multipart body: %w", err)
		}
		fields := make(map[string]any)
		for name, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[name] = normalizeFormValue(values[0])
			}
		}
		for name, files := range r.MultipartForm.File {
			if len(files) > 0 {
				fields[name+"_url"] = "http://localhost/static/" + files[0].Filename
			}
		}
		return fields, nil
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("bad JSON body: %w", err)
	}
	return fields, nil
}

// normalizeFormValue re-types multipart string values the way JSON would
// carry them, so decoded records look the same on both paths.
func normalizeFormValue(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// validate applies the minimal field checks the real backend enforces.
func validate(ns string, fields map[string]any) string {
	name, _ := fields["name"].(string)
	switch ns {
	case "subcategorias":
		if name == "" {
			return "name is required"
		}
		if fields["category_id"] == nil && fields["categoria_id"] == nil {
			return "category_id is required"
		}
	case "categoria-atributos":
		if fields["category_id"] == nil || fields["attribute_id"] == nil {
			return "category_id and attribute_id are required"
		}
	default:
		if name == "" && ns != "valores-atributo" {
			return "name is required"
		}
	}
	return ""
}

// matchesFilters applies query-string filters: search is a substring match
// against the display fields, everything else compares literally.
func matchesFilters(fields map[string]any, q map[string][]string) bool {
	for key, values := range q {
		if key == "page" || key == "page_size" || len(values) == 0 || values[0] == "" {
			continue
		}
		value := values[0]

		switch key {
		case "search":
			if !searchMatch(fields, value) {
				return false
			}
		case "start_date":
			if datePart(fieldString(fields, "created_at", "starts_at")) < value {
				return false
			}
		case "end_date":
			if datePart(fieldString(fields, "created_at", "ends_at")) > value {
				return false
			}
		default:
			if !literalMatch(fields, key, value) {
				return false
			}
		}
	}
	return true
}

func searchMatch(fields map[string]any, term string) bool {
	term = strings.ToLower(term)
	for _, key := range []string{"name", "customer", "cliente", "valor", "value", "sku"} {
		if v, ok := fields[key].(string); ok && strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// spanish aliases the stores use for some foreign keys and fields.
var filterAliases = map[string]string{
	"category_id":  "categoria_id",
	"attribute_id": "atributo_id",
	"brand_id":     "marca_id",
	"status":       "estado",
}

func literalMatch(fields map[string]any, key, value string) bool {
	if v, ok := fields[key]; ok {
		return fmt.Sprintf("%v", v) == value
	}
	if alias, ok := filterAliases[key]; ok {
		if v, ok := fields[alias]; ok {
			return fmt.Sprintf("%v", v) == value
		}
	}
	return false
}

// datePart truncates a timestamp to its date for range comparisons.
func datePart(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func fieldString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k].(string); ok {
			return v
		}
	}
	return ""
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	s.logRequest(r, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.logRequest(r, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"detail": msg})
}

func (s *Server) logRequest(r *http.Request, status int) {
	s.log.Debug("mock request",
		"method", r.Method, "path", r.URL.Path, "status", status,
		"request_id", r.Header.Get("X-Request-ID"))
}
