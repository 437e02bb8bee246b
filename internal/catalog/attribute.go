package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Attribute is a product characteristic (size, color). EsVariable marks
// attributes whose values vary per product variant.
type Attribute struct {
	ID         *int64
	Name       string
	EsVariable bool
	Active     bool
}

func attributeSpec() resource.Spec[Attribute] {
	return resource.Spec[Attribute]{
		Name:         "attribute",
		Endpoint:     "atributos",
		FilterFields: []string{"search"},
		Defaults:     func() Attribute { return Attribute{Active: true} },
		Decode:       decodeAttribute,
		Encode:       encodeAttribute,
		ID:           func(a Attribute) *int64 { return a.ID },
	}
}

func decodeAttribute(r api.Record) Attribute {
	return Attribute{
		ID:   r.ID(),
		Name: r.String("name"),
		// the backend sends this field under both spellings
		EsVariable: r.Bool(false, "es_variable", "esVariable"),
		Active:     r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeAttribute(a Attribute) api.Payload {
	return api.Payload{Fields: map[string]any{
		"name":        a.Name,
		"es_variable": a.EsVariable,
		"active":      a.Active,
	}}
}

var attributeMeta = Meta{
	Title: "Attributes",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "Variable", Width: 10},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "es_variable", Label: "Variable", Kind: FieldToggle},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewAttributeResource binds the attribute entity.
func NewAttributeResource(deps Deps) Resource {
	return Bind(deps, attributeSpec(), attributeMeta,
		func(a Attribute) []string {
			return []string{formatIDPtr(a.ID), a.Name, formatToggle(a.EsVariable), formatToggle(a.Active)}
		},
		func(a Attribute) []string {
			return []string{a.Name, formatToggle(a.EsVariable), formatToggle(a.Active)}
		},
		func(a *Attribute, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("name is required")
			}
			a.Name = strings.TrimSpace(v[0])
			a.EsVariable = parseToggle(v[1])
			a.Active = parseToggle(v[2])
			return nil
		})
}
