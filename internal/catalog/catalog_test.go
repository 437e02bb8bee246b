package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

func testDeps() Deps {
	return Deps{
		Effects:  resource.NopEffects{},
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		PageSize: 10,
	}
}

func TestDecodeCategoryAcceptsBothSpellings(t *testing.T) {
	snake := api.Record{
		"id": float64(3), "name": "Shoes",
		"description": "Footwear", "image_url": "http://x/shoes.png", "is_active": false,
	}
	camel := api.Record{
		"id": float64(3), "name": "Shoes",
		"descripcion": "Footwear", "imageUrl": "http://x/shoes.png", "isActive": false,
	}

	for _, rec := range []api.Record{snake, camel} {
		c := decodeCategory(rec)
		assert.Equal(t, "Shoes", c.Name)
		assert.Equal(t, "Footwear", c.Description)
		assert.Equal(t, "http://x/shoes.png", c.Image.URL)
		assert.False(t, c.Active)
	}
}

func TestDecodeAttributeVariableFlag(t *testing.T) {
	a := decodeAttribute(api.Record{"id": float64(1), "name": "Size", "es_variable": true})
	assert.True(t, a.EsVariable)

	a = decodeAttribute(api.Record{"id": float64(1), "name": "Size", "esVariable": true})
	assert.True(t, a.EsVariable)

	a = decodeAttribute(api.Record{"id": float64(1), "name": "Size"})
	assert.False(t, a.EsVariable)
}

func TestDecodeAttributeValueExtra(t *testing.T) {
	v := decodeAttributeValue(api.Record{"id": float64(2), "valor": "XL", "valor_extra": 1.5})
	assert.Equal(t, "XL", v.Value)
	assert.Equal(t, 1.5, v.ValorExtra)

	v = decodeAttributeValue(api.Record{"id": float64(2), "value": "XL", "valorExtra": 1.5})
	assert.Equal(t, "XL", v.Value)
	assert.Equal(t, 1.5, v.ValorExtra)
}

func TestDecodeAgentNestedTools(t *testing.T) {
	a := decodeAgent(api.Record{
		"id": float64(7), "name": "helper",
		"herramientas": map[string]any{"webSearch": true, "order_lookup": true},
	})
	assert.True(t, a.Tools.WebSearch)
	assert.False(t, a.Tools.CatalogLookup)
	assert.True(t, a.Tools.OrderLookup)
	assert.Equal(t, 0.7, a.Temperature)
}

func TestEncodeBrandSwitchesToMultipartWithPendingLogo(t *testing.T) {
	b := Brand{Name: "Acme", Active: true}
	p := encodeBrand(b)
	assert.Empty(t, p.Files)

	b.Logo = Attachment{File: "/tmp/logo.png"}
	p = encodeBrand(b)
	require.Len(t, p.Files, 1)
	assert.Equal(t, "/tmp/logo.png", p.Files["logo"].Path)
}

func TestApplyAttachmentValue(t *testing.T) {
	existing := Attachment{URL: "http://x/a.png"}

	// unchanged URL keeps the stored attachment
	assert.Equal(t, existing, applyAttachmentValue(existing, "http://x/a.png"))

	// empty clears it
	assert.Equal(t, Attachment{}, applyAttachmentValue(existing, ""))

	// anything else is a pending local file
	got := applyAttachmentValue(existing, "/tmp/new.png")
	assert.True(t, got.Pending())
	assert.Equal(t, "/tmp/new.png", got.File)
}

func TestSubcategorySetValidation(t *testing.T) {
	var s Subcategory

	err := subcategorySet(&s, []string{"", "1", "yes"})
	assert.EqualError(t, err, "name is required")

	err = subcategorySet(&s, []string{"Boots", "", "yes"})
	assert.EqualError(t, err, "category is required")

	err = subcategorySet(&s, []string{"Boots", "abc", "yes"})
	assert.EqualError(t, err, "category must be a number")

	err = subcategorySet(&s, []string{"Boots", "4", "yes"})
	require.NoError(t, err)
	assert.Equal(t, "Boots", s.Name)
	require.NotNil(t, s.CategoryID)
	assert.Equal(t, int64(4), *s.CategoryID)
	assert.True(t, s.Active)
}

func TestOfferDiscountRange(t *testing.T) {
	r := NewOfferResource(testDeps())
	err := r.ApplyDraftValues([]string{"Summer", "120", "2026-06-01", "2026-06-30", "yes"})
	assert.EqualError(t, err, "discount must be between 0 and 100")

	err = r.ApplyDraftValues([]string{"Summer", "15", "2026-06-01", "2026-06-30", "yes"})
	assert.NoError(t, err)
}

func TestOrderResourceIsReadOnly(t *testing.T) {
	r := NewOrderResource(testDeps())
	assert.True(t, r.ReadOnly())
	assert.False(t, r.Restorable())
	assert.Empty(t, r.FormFields())
}

func TestCategoryAttributeIsHardDelete(t *testing.T) {
	r := NewCategoryAttributeResource(testDeps())
	assert.False(t, r.Restorable())
}

func TestAllResourcesHaveDistinctNames(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range All(testDeps()) {
		assert.False(t, seen[r.Name()], "duplicate resource %s", r.Name())
		seen[r.Name()] = true
		assert.NotEmpty(t, r.Title())
		assert.NotEmpty(t, r.Columns())
	}
}

func TestDecodeBulkResult(t *testing.T) {
	res := decodeBulkResult(api.Record{"success_count": float64(3), "error_count": float64(0)}, 3)
	assert.Equal(t, BulkResult{Success: 3}, res)

	res = decodeBulkResult(api.Record{"successCount": float64(1), "errorCount": float64(2)}, 3)
	assert.Equal(t, BulkResult{Success: 1, Failed: 2}, res)

	// empty body means the whole batch landed
	res = decodeBulkResult(nil, 4)
	assert.Equal(t, BulkResult{Success: 4}, res)
}

func TestStageDraftValidatesAndResets(t *testing.T) {
	r := NewSubcategoryResource(testDeps())

	err := r.StageDraft()
	assert.EqualError(t, err, "name is required")

	require.NoError(t, r.ApplyDraftValues([]string{"Boots", "2", "yes"}))
	require.NoError(t, r.StageDraft())
	assert.Equal(t, 1, r.StagedCount())
	assert.Equal(t, []string{"Boots (category 2)"}, r.StagedLabels())

	// the form is clean for the next entry
	assert.Equal(t, []string{"", "", "yes"}, r.DraftValues())

	r.ClearStage()
	assert.Zero(t, r.StagedCount())
}

func TestStageDraftRejectsLoadedRecord(t *testing.T) {
	r := NewSubcategoryResource(testDeps())
	r.Store().LoadDraftFromRecord(api.Record{"id": float64(9), "name": "Boots", "category_id": float64(2)})

	err := r.StageDraft()
	assert.EqualError(t, err, "cannot bulk-create an existing subcategory")
}

func TestBulkCreateClassifiesOutcome(t *testing.T) {
	cases := []struct {
		name    string
		reply   map[string]any
		level   resource.AlertLevel
		outcome string
	}{
		{"all created", map[string]any{"success_count": 2, "error_count": 0}, resource.AlertSuccess, "success"},
		{"partial", map[string]any{"success_count": 1, "error_count": 1}, resource.AlertWarning, "partial"},
		{"none created", map[string]any{"success_count": 0, "error_count": 2}, resource.AlertError, "error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotItems []map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				switch req.URL.Path {
				case "/subcategorias/bulk-create/":
					require.NoError(t, json.NewDecoder(req.Body).Decode(&gotItems))
					w.WriteHeader(http.StatusOK)
					json.NewEncoder(w).Encode(tc.reply)
				case "/subcategorias/list/":
					json.NewEncoder(w).Encode(api.ListEnvelope{Results: nil, Count: 0})
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer srv.Close()

			deps := testDeps()
			deps.Client = api.New(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}),
				5*time.Second, deps.Log)
			fx := &captureEffects{}
			deps.Effects = fx
			rec := &captureRecorder{}
			deps.Recorder = rec

			r := NewSubcategoryResource(deps)
			require.NoError(t, r.ApplyDraftValues([]string{"Boots", "2", "yes"}))
			require.NoError(t, r.StageDraft())
			require.NoError(t, r.ApplyDraftValues([]string{"Sandals", "2", "yes"}))
			require.NoError(t, r.StageDraft())

			require.NoError(t, r.BulkCreate(context.Background()))

			require.Len(t, gotItems, 2)
			assert.Equal(t, "Boots", gotItems[0]["name"])

			require.NotNil(t, fx.alert)
			assert.Equal(t, tc.level, fx.alert.Level)
			assert.True(t, fx.modalClosed)
			assert.Zero(t, r.StagedCount())

			require.Len(t, rec.entries, 1)
			assert.Equal(t, "bulk-create", rec.entries[0].Operation)
			assert.Equal(t, tc.outcome, rec.entries[0].Outcome)
		})
	}
}

func TestBulkCreateKeepsStageOnRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	deps := testDeps()
	deps.Client = api.New(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}),
		5*time.Second, deps.Log)
	fx := &captureEffects{}
	deps.Effects = fx

	r := NewSubcategoryResource(deps)
	require.NoError(t, r.ApplyDraftValues([]string{"Boots", "2", "yes"}))
	require.NoError(t, r.StageDraft())

	err := r.BulkCreate(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, r.StagedCount())
	require.NotNil(t, fx.alert)
	assert.Equal(t, resource.AlertError, fx.alert.Level)
	assert.Contains(t, fx.alert.Text, "rejected")
}

func TestBulkCreateWithEmptyStage(t *testing.T) {
	r := NewSubcategoryResource(testDeps())
	err := r.BulkCreate(context.Background())
	assert.EqualError(t, err, "nothing staged")
}

type captureEffects struct {
	alert       *resource.Alert
	modalClosed bool
}

func (c *captureEffects) BeginLoading()           {}
func (c *captureEffects) EndLoading()             {}
func (c *captureEffects) OpenModal()              {}
func (c *captureEffects) CloseModal()             { c.modalClosed = true }
func (c *captureEffects) Notify(a resource.Alert) { c.alert = &a }

type captureRecorder struct {
	entries []resource.AuditEntry
}

func (c *captureRecorder) Record(e resource.AuditEntry) {
	c.entries = append(c.entries, e)
}
