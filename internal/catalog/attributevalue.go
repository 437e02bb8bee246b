package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// AttributeValue is one allowed value of an attribute ("Rojo" for color).
// ValorExtra is an optional surcharge applied when the value is selected.
type AttributeValue struct {
	ID          *int64
	AttributeID *int64
	Value       string
	ValorExtra  float64
	Active      bool
}

func attributeValueSpec() resource.Spec[AttributeValue] {
	return resource.Spec[AttributeValue]{
		Name:         "attribute value",
		Endpoint:     "valores-atributo",
		FilterFields: []string{"search", "attribute_id"},
		Defaults:     func() AttributeValue { return AttributeValue{Active: true} },
		Decode:       decodeAttributeValue,
		Encode:       encodeAttributeValue,
		ID:           func(v AttributeValue) *int64 { return v.ID },
	}
}

func decodeAttributeValue(r api.Record) AttributeValue {
	return AttributeValue{
		ID:          r.ID(),
		AttributeID: r.Int("attribute_id", "attributeId", "atributo_id"),
		Value:       r.String("value", "valor"),
		ValorExtra:  r.Float(0, "valor_extra", "valorExtra"),
		Active:      r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeAttributeValue(v AttributeValue) api.Payload {
	fields := map[string]any{
		"value":       v.Value,
		"valor_extra": v.ValorExtra,
		"active":      v.Active,
	}
	if v.AttributeID != nil {
		fields["attribute_id"] = *v.AttributeID
	}
	return api.Payload{Fields: fields}
}

var attributeValueMeta = Meta{
	Title: "Attribute Values",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Value", Width: 24},
		{Title: "Attribute", Width: 10},
		{Title: "Extra", Width: 10},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
		{Key: "attribute_id", Label: "Attribute ID", Kind: FieldNumber},
	},
	Form: []FormField{
		{Key: "value", Label: "Value", Kind: FieldText},
		{Key: "attribute_id", Label: "Attribute ID", Kind: FieldNumber},
		{Key: "valor_extra", Label: "Extra charge", Kind: FieldNumber},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewAttributeValueResource binds the attribute-value entity.
func NewAttributeValueResource(deps Deps) Resource {
	return Bind(deps, attributeValueSpec(), attributeValueMeta,
		func(v AttributeValue) []string {
			return []string{formatIDPtr(v.ID), v.Value, formatIDPtr(v.AttributeID), formatFloat(v.ValorExtra), formatToggle(v.Active)}
		},
		func(v AttributeValue) []string {
			return []string{v.Value, formatIDPtr(v.AttributeID), formatFloat(v.ValorExtra), formatToggle(v.Active)}
		},
		func(av *AttributeValue, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("value is required")
			}
			attributeID, err := parseOptionalID("attribute", v[1])
			if err != nil {
				return err
			}
			if attributeID == nil {
				return fmt.Errorf("attribute is required")
			}
			extra, err := parseFloat("extra charge", v[2], 0)
			if err != nil {
				return err
			}
			av.Value = strings.TrimSpace(v[0])
			av.AttributeID = attributeID
			av.ValorExtra = extra
			av.Active = parseToggle(v[3])
			return nil
		})
}
