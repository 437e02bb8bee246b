package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tiendactl/tiendactl/internal/api"
)

// Controller bridges a Store to the backend and sequences the shared UI
// effects around each network operation. Failure semantics are uniform:
// transport errors and rejected responses collapse into one "operation
// failed" outcome surfaced as an alert. No retries, no cancellation of
// in-flight requests.
type Controller[T any] struct {
	store *Store[T]
	api   *api.Client
	fx    Effects
	log   *slog.Logger
	rec   Recorder
}

// NewController wires a store to the API client and UI coordinator.
func NewController[T any](store *Store[T], client *api.Client, fx Effects, log *slog.Logger) *Controller[T] {
	return &Controller[T]{
		store: store,
		api:   client,
		fx:    fx,
		log:   log.With("entity", store.Spec().Name),
	}
}

// WithRecorder attaches an operation history recorder.
func (c *Controller[T]) WithRecorder(rec Recorder) *Controller[T] {
	c.rec = rec
	return c
}

// Store returns the underlying store.
func (c *Controller[T]) Store() *Store[T] {
	return c.store
}

// List fetches the current page with the active filters. On failure the
// list cache is replaced with an empty list and a zeroed descriptor, never
// left mixed with stale data. The loading indicator is always released,
// even on a throw, and stale responses are dropped by generation.
func (c *Controller[T]) List(ctx context.Context) error {
	spec := c.store.Spec()
	gen := c.store.BeginRequest()

	c.fx.BeginLoading()
	defer c.fx.EndLoading()

	pag := c.store.Pagination()
	q := api.Query{
		Page:     pag.CurrentPage,
		PageSize: pag.PageSize,
		Filters:  c.store.Filters().NonEmpty(),
	}

	env, err := c.api.List(ctx, spec.Endpoint, q)
	if err != nil {
		c.log.Error("list failed", "error", err)
		c.store.ReplaceList(gen, nil, Pagination{PageSize: pag.PageSize, CurrentPage: 1})
		return err
	}

	records := make([]T, 0, len(env.Results))
	for _, rec := range env.Results {
		records = append(records, spec.Decode(rec))
	}

	c.store.ReplaceList(gen, records, Pagination{
		Count:       env.Count,
		PageSize:    q.PageSize,
		CurrentPage: q.Page,
		TotalPages:  TotalPages(env.Count, q.PageSize),
		Next:        env.Next,
		Previous:    env.Previous,
	})
	return nil
}

// Show fetches one record and loads it into the draft. The shared modal
// opens only after a confirmed success, never optimistically.
func (c *Controller[T]) Show(ctx context.Context, id int64) error {
	spec := c.store.Spec()

	c.fx.BeginLoading()
	defer c.fx.EndLoading()

	rec, err := c.api.Get(ctx, spec.Endpoint, id)
	if err != nil {
		c.log.Error("show failed", "id", id, "error", err)
		c.fx.Notify(Alert{
			Level: AlertError,
			Title: "Load failed",
			Text:  fmt.Sprintf("Could not load %s %d: %s", spec.Name, id, failureText(err)),
		})
		return err
	}

	c.store.LoadDraftFromRecord(rec)
	c.fx.OpenModal()
	return nil
}

// Create posts the current draft. On 201 the draft resets, the list is
// refreshed and a success alert is queued. The modal closes regardless of
// outcome; only the alert level differs.
func (c *Controller[T]) Create(ctx context.Context) error {
	spec := c.store.Spec()
	ctx = api.WithRequestID(ctx, uuid.NewString())

	c.fx.BeginLoading()
	defer c.fx.EndLoading()
	defer c.fx.CloseModal()

	rec, err := c.api.Create(ctx, spec.Endpoint, spec.Encode(c.store.Draft()))
	if err != nil {
		c.log.Error("create failed", "error", err)
		c.fx.Notify(Alert{
			Level: AlertError,
			Title: "Create failed",
			Text:  fmt.Sprintf("Could not create %s: %s", spec.Name, failureText(err)),
		})
		c.audit(ctx, "create", nil, err)
		return err
	}

	c.store.ResetDraft()
	c.fx.Notify(Alert{
		Level: AlertSuccess,
		Title: "Created",
		Text:  fmt.Sprintf("The %s was created.", spec.Name),
	})
	c.audit(ctx, "create", rec.ID(), nil)
	return c.List(ctx)
}

// Update patches the record identified by the draft. Same sequence and
// guarantees as Create, accepting 200 or 201 as success.
func (c *Controller[T]) Update(ctx context.Context) error {
	spec := c.store.Spec()
	ctx = api.WithRequestID(ctx, uuid.NewString())

	id := c.store.DraftID()
	if id == nil {
		return fmt.Errorf("update requires a saved %s", spec.Name)
	}

	c.fx.BeginLoading()
	defer c.fx.EndLoading()
	defer c.fx.CloseModal()

	_, err := c.api.Update(ctx, spec.Endpoint, *id, spec.Encode(c.store.Draft()))
	if err != nil {
		c.log.Error("update failed", "id", *id, "error", err)
		c.fx.Notify(Alert{
			Level: AlertError,
			Title: "Update failed",
			Text:  fmt.Sprintf("Could not update %s %d: %s", spec.Name, *id, failureText(err)),
		})
		c.audit(ctx, "update", id, err)
		return err
	}

	c.store.ResetDraft()
	c.fx.Notify(Alert{
		Level: AlertSuccess,
		Title: "Updated",
		Text:  fmt.Sprintf("The %s was updated.", spec.Name),
	})
	c.audit(ctx, "update", id, nil)
	return c.List(ctx)
}

// Remove deletes a record and refreshes the list. The confirmation gate is
// the caller's contract: the table screen must have dispatched a confirm
// alert whose action invokes Remove; the controller itself asks nothing.
func (c *Controller[T]) Remove(ctx context.Context, id int64) error {
	spec := c.store.Spec()
	ctx = api.WithRequestID(ctx, uuid.NewString())

	c.fx.BeginLoading()
	defer c.fx.EndLoading()

	if err := c.api.Delete(ctx, spec.Endpoint, id); err != nil {
		c.log.Error("delete failed", "id", id, "error", err)
		c.fx.Notify(Alert{
			Level: AlertError,
			Title: "Delete failed",
			Text:  fmt.Sprintf("Could not delete %s %d: %s", spec.Name, id, failureText(err)),
		})
		c.audit(ctx, "delete", &id, err)
		return err
	}

	c.fx.Notify(Alert{
		Level: AlertSuccess,
		Title: "Deleted",
		Text:  fmt.Sprintf("The %s was deleted.", spec.Name),
	})
	c.audit(ctx, "delete", &id, nil)
	return c.List(ctx)
}

// Restore undoes a soft delete and refreshes the list. Hard-delete
// entities have no restore endpoint.
func (c *Controller[T]) Restore(ctx context.Context, id int64) error {
	spec := c.store.Spec()
	if spec.HardDelete {
		return fmt.Errorf("%s cannot be restored", spec.Name)
	}
	ctx = api.WithRequestID(ctx, uuid.NewString())

	c.fx.BeginLoading()
	defer c.fx.EndLoading()

	if err := c.api.Restore(ctx, spec.Endpoint, id); err != nil {
		c.log.Error("restore failed", "id", id, "error", err)
		c.fx.Notify(Alert{
			Level: AlertError,
			Title: "Restore failed",
			Text:  fmt.Sprintf("Could not restore %s %d: %s", spec.Name, id, failureText(err)),
		})
		c.audit(ctx, "restore", &id, err)
		return err
	}

	c.fx.Notify(Alert{
		Level: AlertSuccess,
		Title: "Restored",
		Text:  fmt.Sprintf("The %s was restored.", spec.Name),
	})
	c.audit(ctx, "restore", &id, nil)
	return c.List(ctx)
}

func (c *Controller[T]) audit(ctx context.Context, op string, id *int64, err error) {
	if c.rec == nil {
		return
	}
	entry := AuditEntry{
		Entity:    c.store.Spec().Name,
		Operation: op,
		RecordID:  id,
		Outcome:   "success",
		RequestID: api.RequestIDFromContext(ctx),
	}
	if err != nil {
		entry.Outcome = "error"
		entry.Detail = err.Error()
	}
	c.rec.Record(entry)
}

// failureText phrases transport failures and server rejections differently;
// control flow treats them identically.
func failureText(err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("the server rejected the request (%d)", statusErr.Status)
	}
	return "the request never reached the server"
}
