// Package catalog defines the admin dashboard's resources: one Spec plus
// screen metadata per entity, bound to a generic store/controller pair.
// Adding an entity means adding one file here; no per-entity state or
// controller code is copied.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// FieldKind drives how the TUI renders and parses a form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldToggle
	FieldFile
)

// FormField describes one filter-bar or form input.
type FormField struct {
	Key   string
	Label string
	Kind  FieldKind
}

// Column describes one table column.
type Column struct {
	Title string
	Width int
}

// Meta is the screen description for a resource.
type Meta struct {
	Title   string
	Columns []Column
	Filters []FormField
	Form    []FormField
}

// Resource is the type-erased view of one bound entity, consumed by the
// TUI. Every method delegates to the generic store/controller pair.
type Resource interface {
	Name() string
	Title() string
	Columns() []Column
	FilterFields() []FormField
	FormFields() []FormField
	ReadOnly() bool
	Restorable() bool

	Rows() [][]string
	RowID(i int) *int64
	Pagination() resource.Pagination

	DraftID() *int64
	DraftValues() []string
	ApplyDraftValues(values []string) error
	ResetDraft()

	FilterValues() []string
	StageFilter(name, value string)
	ApplyStagedFilters()
	ClearFilters()

	SetPage(n int)
	SetPageSize(n int)

	List(ctx context.Context) error
	Show(ctx context.Context, id int64) error
	Create(ctx context.Context) error
	Update(ctx context.Context) error
	Remove(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

// Deps carries everything a binding needs.
type Deps struct {
	Client   *api.Client
	Effects  resource.Effects
	Log      *slog.Logger
	Recorder resource.Recorder
	PageSize int
}

// Binding wires one entity's Spec and Meta to a store/controller pair and
// adapts it to the Resource interface.
type Binding[T any] struct {
	spec  resource.Spec[T]
	meta  Meta
	store *resource.Store[T]
	ctrl  *resource.Controller[T]
	row   func(T) []string
	get   func(T) []string
	set   func(*T, []string) error
}

// Bind builds the store and controller for one entity from its config.
func Bind[T any](deps Deps, spec resource.Spec[T], meta Meta,
	row func(T) []string, get func(T) []string, set func(*T, []string) error) *Binding[T] {

	store := resource.NewStore(spec, deps.PageSize)
	ctrl := resource.NewController(store, deps.Client, deps.Effects, deps.Log)
	if deps.Recorder != nil {
		ctrl = ctrl.WithRecorder(deps.Recorder)
	}
	return &Binding[T]{
		spec:  spec,
		meta:  meta,
		store: store,
		ctrl:  ctrl,
		row:   row,
		get:   get,
		set:   set,
	}
}

// Store exposes the typed store, for entity-specific flows.
func (b *Binding[T]) Store() *resource.Store[T] { return b.store }

func (b *Binding[T]) Name() string               { return b.spec.Name }
func (b *Binding[T]) Title() string              { return b.meta.Title }
func (b *Binding[T]) Columns() []Column          { return b.meta.Columns }
func (b *Binding[T]) FilterFields() []FormField  { return b.meta.Filters }
func (b *Binding[T]) FormFields() []FormField    { return b.meta.Form }
func (b *Binding[T]) ReadOnly() bool             { return b.spec.ReadOnly }
func (b *Binding[T]) Restorable() bool           { return !b.spec.HardDelete && !b.spec.ReadOnly }

func (b *Binding[T]) Rows() [][]string {
	list := b.store.List()
	rows := make([][]string, 0, len(list))
	for _, item := range list {
		rows = append(rows, b.row(item))
	}
	return rows
}

func (b *Binding[T]) RowID(i int) *int64 {
	list := b.store.List()
	if i < 0 || i >= len(list) {
		return nil
	}
	return b.spec.ID(list[i])
}

func (b *Binding[T]) Pagination() resource.Pagination { return b.store.Pagination() }

func (b *Binding[T]) DraftID() *int64 { return b.store.DraftID() }

func (b *Binding[T]) DraftValues() []string {
	return b.get(b.store.Draft())
}

func (b *Binding[T]) ApplyDraftValues(values []string) error {
	var applyErr error
	b.store.UpdateDraft(func(draft *T) {
		applyErr = b.set(draft, values)
	})
	return applyErr
}

func (b *Binding[T]) ResetDraft() { b.store.ResetDraft() }

func (b *Binding[T]) FilterValues() []string {
	filters := b.store.Filters()
	values := make([]string, len(b.meta.Filters))
	for i, f := range b.meta.Filters {
		values[i] = filters[f.Key]
	}
	return values
}

func (b *Binding[T]) StageFilter(name, value string) { b.store.SetFilterField(name, value) }

// ApplyStagedFilters commits the staged filter values, resetting the page.
func (b *Binding[T]) ApplyStagedFilters() { b.store.SetFilters(b.store.Filters()) }

func (b *Binding[T]) ClearFilters() { b.store.ClearFilters() }

func (b *Binding[T]) SetPage(n int)     { b.store.SetPage(n) }
func (b *Binding[T]) SetPageSize(n int) { b.store.SetPageSize(n) }

func (b *Binding[T]) List(ctx context.Context) error  { return b.ctrl.List(ctx) }
func (b *Binding[T]) Show(ctx context.Context, id int64) error {
	return b.ctrl.Show(ctx, id)
}
func (b *Binding[T]) Create(ctx context.Context) error { return b.ctrl.Create(ctx) }
func (b *Binding[T]) Update(ctx context.Context) error { return b.ctrl.Update(ctx) }
func (b *Binding[T]) Remove(ctx context.Context, id int64) error {
	return b.ctrl.Remove(ctx, id)
}
func (b *Binding[T]) Restore(ctx context.Context, id int64) error {
	return b.ctrl.Restore(ctx, id)
}

// All builds the dashboard's resources in tab order.
func All(deps Deps) []Resource {
	return []Resource{
		NewCategoryResource(deps),
		NewSubcategoryResource(deps),
		NewAttributeResource(deps),
		NewAttributeValueResource(deps),
		NewBrandResource(deps),
		NewCategoryAttributeResource(deps),
		NewProductResource(deps),
		NewAgentResource(deps),
		NewOfferResource(deps),
		NewOrderResource(deps),
	}
}

// parsing helpers shared by the entity value codecs

func parseToggle(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "si", "sí":
		return true
	default:
		return false
	}
}

func formatToggle(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseOptionalID(label, s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", label)
	}
	return &n, nil
}

func parseFloat(label, s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", label)
	}
	return f, nil
}

func parseInt(label, s string, def int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", label)
	}
	return n, nil
}

func formatIDPtr(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
