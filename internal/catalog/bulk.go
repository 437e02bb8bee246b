package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// SubcategoryResource extends the generic binding with a bulk staging
// flow: drafts are queued locally and sent in one bulk-create call. The
// backend answers with per-batch counts, not per-item results, so a batch
// is classified as fully applied, partially applied or rejected.
type SubcategoryResource struct {
	*Binding[Subcategory]
	deps Deps

	mu     sync.Mutex
	staged []Subcategory
}

// BulkResult is the backend's summary of one bulk-create call.
type BulkResult struct {
	Success int
	Failed  int
}

// NewSubcategoryResource binds the subcategory entity with bulk support.
func NewSubcategoryResource(deps Deps) *SubcategoryResource {
	return &SubcategoryResource{
		Binding: Bind(deps, subcategorySpec(), subcategoryMeta,
			subcategoryRow, subcategoryGet, subcategorySet),
		deps: deps,
	}
}

// StageDraft queues the current draft for the next bulk call and resets
// the form for the next entry. Drafts loaded from an existing record are
// rejected; bulk-create only inserts.
func (r *SubcategoryResource) StageDraft() error {
	store := r.Store()
	draft := store.Draft()
	if draft.ID != nil {
		return fmt.Errorf("cannot bulk-create an existing subcategory")
	}
	if draft.Name == "" {
		return fmt.Errorf("name is required")
	}
	if draft.CategoryID == nil {
		return fmt.Errorf("category is required")
	}

	r.mu.Lock()
	r.staged = append(r.staged, draft)
	r.mu.Unlock()

	store.ResetDraft()
	return nil
}

// StagedCount returns the number of queued drafts.
func (r *SubcategoryResource) StagedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.staged)
}

// StagedLabels returns a display line per queued draft.
func (r *SubcategoryResource) StagedLabels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make([]string, 0, len(r.staged))
	for _, s := range r.staged {
		labels = append(labels, fmt.Sprintf("%s (category %s)", s.Name, formatIDPtr(s.CategoryID)))
	}
	return labels
}

// ClearStage discards all queued drafts.
func (r *SubcategoryResource) ClearStage() {
	r.mu.Lock()
	r.staged = nil
	r.mu.Unlock()
}

// BulkCreate sends the queued drafts in one call. On transport failure or
// rejection the stage is kept so the batch can be retried; once the
// backend has answered with counts the stage is cleared, because the
// successes already exist server-side and a resend would duplicate them.
func (r *SubcategoryResource) BulkCreate(ctx context.Context) error {
	r.mu.Lock()
	staged := make([]Subcategory, len(r.staged))
	copy(staged, r.staged)
	r.mu.Unlock()

	if len(staged) == 0 {
		return fmt.Errorf("nothing staged")
	}

	ctx = api.WithRequestID(ctx, uuid.NewString())
	fx := r.deps.Effects

	fx.BeginLoading()
	defer fx.EndLoading()
	defer fx.CloseModal()

	items := make([]map[string]any, 0, len(staged))
	for _, s := range staged {
		items = append(items, encodeSubcategory(s).Fields)
	}

	rec, err := r.deps.Client.BulkCreate(ctx, "subcategorias", items)
	if err != nil {
		r.deps.Log.Error("bulk create failed", "entity", "subcategory", "count", len(staged), "error", err)
		fx.Notify(resource.Alert{
			Level: resource.AlertError,
			Title: "Bulk create failed",
			Text:  fmt.Sprintf("Could not create %d subcategories: %s", len(staged), bulkFailureText(err)),
		})
		r.auditBulk(ctx, len(staged), "error", err.Error())
		return err
	}

	result := decodeBulkResult(rec, len(staged))
	r.ClearStage()

	switch {
	case result.Failed == 0:
		fx.Notify(resource.Alert{
			Level: resource.AlertSuccess,
			Title: "Bulk create complete",
			Text:  fmt.Sprintf("All %d subcategories were created.", result.Success),
		})
		r.auditBulk(ctx, len(staged), "success", "")
	case result.Success == 0:
		fx.Notify(resource.Alert{
			Level: resource.AlertError,
			Title: "Bulk create failed",
			Text:  fmt.Sprintf("None of the %d subcategories were created.", result.Failed),
		})
		r.auditBulk(ctx, len(staged), "error", fmt.Sprintf("%d rejected", result.Failed))
	default:
		fx.Notify(resource.Alert{
			Level: resource.AlertWarning,
			Title: "Bulk create partial",
			Text:  fmt.Sprintf("%d subcategories created, %d rejected.", result.Success, result.Failed),
		})
		r.auditBulk(ctx, len(staged), "partial", fmt.Sprintf("%d created, %d rejected", result.Success, result.Failed))
	}

	return r.List(ctx)
}

// decodeBulkResult reads the backend's counts, tolerating both spellings.
// An empty body counts the whole batch as created.
func decodeBulkResult(rec api.Record, total int) BulkResult {
	if rec == nil {
		return BulkResult{Success: total}
	}
	result := BulkResult{}
	if n := rec.Int("success_count", "successCount", "created"); n != nil {
		result.Success = int(*n)
	}
	if n := rec.Int("error_count", "errorCount", "failed"); n != nil {
		result.Failed = int(*n)
	}
	if result.Success == 0 && result.Failed == 0 {
		result.Success = total
	}
	return result
}

func (r *SubcategoryResource) auditBulk(ctx context.Context, count int, outcome, detail string) {
	if r.deps.Recorder == nil {
		return
	}
	if detail == "" {
		detail = fmt.Sprintf("%d staged", count)
	}
	r.deps.Recorder.Record(resource.AuditEntry{
		Entity:    "subcategory",
		Operation: "bulk-create",
		Outcome:   outcome,
		Detail:    detail,
		RequestID: api.RequestIDFromContext(ctx),
	})
}

func bulkFailureText(err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("the server rejected the request (%d)", statusErr.Status)
	}
	return "the request never reached the server"
}
