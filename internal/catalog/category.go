package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Category is a top-level catalog grouping.
type Category struct {
	ID          *int64
	Name        string
	Description string
	Image       Attachment
	Active      bool
}

func categorySpec() resource.Spec[Category] {
	return resource.Spec[Category]{
		Name:         "category",
		Endpoint:     "categorias",
		FilterFields: []string{"search"},
		Defaults:     func() Category { return Category{Active: true} },
		Decode:       decodeCategory,
		Encode:       encodeCategory,
		ID:           func(c Category) *int64 { return c.ID },
	}
}

func decodeCategory(r api.Record) Category {
	return Category{
		ID:          r.ID(),
		Name:        r.String("name"),
		Description: r.String("description", "descripcion"),
		Image:       Attachment{URL: r.String("image_url", "imageUrl", "image")},
		Active:      r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeCategory(c Category) api.Payload {
	p := api.Payload{Fields: map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"active":      c.Active,
	}}
	if c.Image.Pending() {
		p.Files = map[string]api.Upload{"image": {Path: c.Image.File}}
	}
	return p
}

var categoryMeta = Meta{
	Title: "Categories",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Description", Width: 36},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "description", Label: "Description", Kind: FieldText},
		{Key: "image", Label: "Image", Kind: FieldFile},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewCategoryResource binds the category entity.
func NewCategoryResource(deps Deps) Resource {
	return Bind(deps, categorySpec(), categoryMeta,
		func(c Category) []string {
			return []string{formatIDPtr(c.ID), c.Name, c.Description, formatToggle(c.Active)}
		},
		func(c Category) []string {
			return []string{c.Name, c.Description, c.Image.Display(), formatToggle(c.Active)}
		},
		func(c *Category, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("name is required")
			}
			c.Name = strings.TrimSpace(v[0])
			c.Description = v[1]
			c.Image = applyAttachmentValue(c.Image, strings.TrimSpace(v[2]))
			c.Active = parseToggle(v[3])
			return nil
		})
}
