package resource

import (
	"sync"

	"github.com/tiendactl/tiendactl/internal/api"
)

// Store holds the client-side state for one resource type: the form draft,
// the list cache, the pagination descriptor and the filter set. All
// transitions are synchronous and side-effect free; controllers run in
// goroutines while the view reads, so everything is guarded by a mutex.
//
// The draft has three states: empty (defaults, id nil), editing-new
// (id nil, fields touched) and editing-existing (id set). A successful
// save always returns to empty via ResetDraft.
type Store[T any] struct {
	mu      sync.RWMutex
	spec    Spec[T]
	draft   T
	list    []T
	pag     Pagination
	filters Filters
	gen     uint64
	applied uint64
}

// NewStore builds a store for the given spec with an empty draft, an empty
// list and an all-empty filter set on page 1.
func NewStore[T any](spec Spec[T], pageSize int) *Store[T] {
	return &Store[T]{
		spec:    spec,
		draft:   spec.Defaults(),
		filters: emptyFilters(spec.FilterFields),
		pag: Pagination{
			PageSize:    pageSize,
			CurrentPage: 1,
		},
	}
}

// Spec returns the entity configuration.
func (s *Store[T]) Spec() Spec[T] {
	return s.spec
}

// Draft returns the current form draft.
func (s *Store[T]) Draft() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// UpdateDraft mutates the draft in place. This is the field-change path;
// no validation happens here.
func (s *Store[T]) UpdateDraft(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
}

// ResetDraft restores the draft to the entity defaults. Idempotent; never
// touches the list cache.
func (s *Store[T]) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.spec.Defaults()
}

// LoadDraftFromRecord populates the draft wholesale from a server record,
// entering editing-existing state.
func (s *Store[T]) LoadDraftFromRecord(rec api.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.spec.Decode(rec)
}

// DraftID returns the draft identity; nil disambiguates create from update.
func (s *Store[T]) DraftID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec.ID(s.draft)
}

// List returns a copy of the list cache.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.list))
	copy(out, s.list)
	return out
}

// BeginRequest issues the next request generation token. Only the response
// carrying the most recent token is applied; a slow stale response can no
// longer overwrite a newer one.
func (s *Store[T]) BeginRequest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// ReplaceList wholesale-replaces the list cache and pagination descriptor.
// The previous list is fully discarded, never merged. Returns false when
// gen is stale and the payload was dropped.
func (s *Store[T]) ReplaceList(gen uint64, records []T, pag Pagination) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.applied {
		return false
	}
	s.applied = gen
	s.list = records
	s.pag = pag
	return true
}

// Pagination returns the current pagination descriptor.
func (s *Store[T]) Pagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pag
}

// SetPage moves to page n.
func (s *Store[T]) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.pag.CurrentPage = n
}

// SetPageSize changes the page size; the current page always resets to 1.
func (s *Store[T]) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		return
	}
	s.pag.PageSize = n
	s.pag.CurrentPage = 1
}

// Filters returns a copy of the filter set.
func (s *Store[T]) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// SetFilters applies the given filter values and resets the page to 1.
func (s *Store[T]) SetFilters(partial map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, value := range partial {
		s.filters[name] = value
	}
	s.pag.CurrentPage = 1
}

// SetFilterField stages a single filter value without resetting the page;
// the value only takes effect on the next explicit apply.
func (s *Store[T]) SetFilterField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[name] = value
}

// ClearFilters restores the all-empty filter set and resets the page to 1.
func (s *Store[T]) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = emptyFilters(s.spec.FilterFields)
	s.pag.CurrentPage = 1
}
