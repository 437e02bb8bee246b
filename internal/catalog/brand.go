package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Brand is a product manufacturer with an optional logo.
type Brand struct {
	ID     *int64
	Name   string
	Logo   Attachment
	Active bool
}

func brandSpec() resource.Spec[Brand] {
	return resource.Spec[Brand]{
		Name:         "brand",
		Endpoint:     "marcas",
		FilterFields: []string{"search"},
		Defaults:     func() Brand { return Brand{Active: true} },
		Decode:       decodeBrand,
		Encode:       encodeBrand,
		ID:           func(b Brand) *int64 { return b.ID },
	}
}

func decodeBrand(r api.Record) Brand {
	return Brand{
		ID:     r.ID(),
		Name:   r.String("name"),
		Logo:   Attachment{URL: r.String("logo_url", "logoUrl", "logo")},
		Active: r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeBrand(b Brand) api.Payload {
	p := api.Payload{Fields: map[string]any{
		"name":   b.Name,
		"active": b.Active,
	}}
	if b.Logo.Pending() {
		p.Files = map[string]api.Upload{"logo": {Path: b.Logo.File}}
	}
	return p
}

var brandMeta = Meta{
	Title: "Brands",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "Logo", Width: 30},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "logo", Label: "Logo", Kind: FieldFile},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewBrandResource binds the brand entity.
func NewBrandResource(deps Deps) Resource {
	return Bind(deps, brandSpec(), brandMeta,
		func(b Brand) []string {
			return []string{formatIDPtr(b.ID), b.Name, b.Logo.URL, formatToggle(b.Active)}
		},
		func(b Brand) []string {
			return []string{b.Name, b.Logo.Display(), formatToggle(b.Active)}
		},
		func(b *Brand, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("name is required")
			}
			b.Name = strings.TrimSpace(v[0])
			b.Logo = applyAttachmentValue(b.Logo, strings.TrimSpace(v[1]))
			b.Active = parseToggle(v[2])
			return nil
		})
}
