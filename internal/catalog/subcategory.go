package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Subcategory nests under a category.
type Subcategory struct {
	ID         *int64
	Name       string
	CategoryID *int64
	Active     bool
}

func subcategorySpec() resource.Spec[Subcategory] {
	return resource.Spec[Subcategory]{
		Name:         "subcategory",
		Endpoint:     "subcategorias",
		FilterFields: []string{"search", "category_id"},
		Defaults:     func() Subcategory { return Subcategory{Active: true} },
		Decode:       decodeSubcategory,
		Encode:       encodeSubcategory,
		ID:           func(s Subcategory) *int64 { return s.ID },
	}
}

func decodeSubcategory(r api.Record) Subcategory {
	return Subcategory{
		ID:         r.ID(),
		Name:       r.String("name"),
		CategoryID: r.Int("category_id", "categoryId", "categoria_id"),
		Active:     r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeSubcategory(s Subcategory) api.Payload {
	fields := map[string]any{
		"name":   s.Name,
		"active": s.Active,
	}
	if s.CategoryID != nil {
		fields["category_id"] = *s.CategoryID
	}
	return api.Payload{Fields: fields}
}

var subcategoryMeta = Meta{
	Title: "Subcategories",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "Category", Width: 10},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
		{Key: "category_id", Label: "Category ID", Kind: FieldNumber},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "category_id", Label: "Category ID", Kind: FieldNumber},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

func subcategoryRow(s Subcategory) []string {
	return []string{formatIDPtr(s.ID), s.Name, formatIDPtr(s.CategoryID), formatToggle(s.Active)}
}

func subcategoryGet(s Subcategory) []string {
	return []string{s.Name, formatIDPtr(s.CategoryID), formatToggle(s.Active)}
}

func subcategorySet(s *Subcategory, v []string) error {
	if strings.TrimSpace(v[0]) == "" {
		return fmt.Errorf("name is required")
	}
	categoryID, err := parseOptionalID("category", v[1])
	if err != nil {
		return err
	}
	if categoryID == nil {
		return fmt.Errorf("category is required")
	}
	s.Name = strings.TrimSpace(v[0])
	s.CategoryID = categoryID
	s.Active = parseToggle(v[2])
	return nil
}
