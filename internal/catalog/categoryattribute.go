package catalog

import (
	"fmt"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// CategoryAttribute links an attribute to a category. It is the one
// hard-delete entity: the backend answers 200 on delete and offers no
// restore endpoint.
type CategoryAttribute struct {
	ID          *int64
	CategoryID  *int64
	AttributeID *int64
}

func categoryAttributeSpec() resource.Spec[CategoryAttribute] {
	return resource.Spec[CategoryAttribute]{
		Name:         "category attribute",
		Endpoint:     "categoria-atributos",
		HardDelete:   true,
		FilterFields: []string{"category_id", "attribute_id"},
		Defaults:     func() CategoryAttribute { return CategoryAttribute{} },
		Decode:       decodeCategoryAttribute,
		Encode:       encodeCategoryAttribute,
		ID:           func(ca CategoryAttribute) *int64 { return ca.ID },
	}
}

func decodeCategoryAttribute(r api.Record) CategoryAttribute {
	return CategoryAttribute{
		ID:          r.ID(),
		CategoryID:  r.Int("category_id", "categoryId", "categoria_id"),
		AttributeID: r.Int("attribute_id", "attributeId", "atributo_id"),
	}
}

func encodeCategoryAttribute(ca CategoryAttribute) api.Payload {
	fields := map[string]any{}
	if ca.CategoryID != nil {
		fields["category_id"] = *ca.CategoryID
	}
	if ca.AttributeID != nil {
		fields["attribute_id"] = *ca.AttributeID
	}
	return api.Payload{Fields: fields}
}

var categoryAttributeMeta = Meta{
	Title: "Category Attributes",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Category", Width: 12},
		{Title: "Attribute", Width: 12},
	},
	Filters: []FormField{
		{Key: "category_id", Label: "Category ID", Kind: FieldNumber},
		{Key: "attribute_id", Label: "Attribute ID", Kind: FieldNumber},
	},
	Form: []FormField{
		{Key: "category_id", Label: "Category ID", Kind: FieldNumber},
		{Key: "attribute_id", Label: "Attribute ID", Kind: FieldNumber},
	},
}

// NewCategoryAttributeResource binds the category-attribute link entity.
func NewCategoryAttributeResource(deps Deps) Resource {
	return Bind(deps, categoryAttributeSpec(), categoryAttributeMeta,
		func(ca CategoryAttribute) []string {
			return []string{formatIDPtr(ca.ID), formatIDPtr(ca.CategoryID), formatIDPtr(ca.AttributeID)}
		},
		func(ca CategoryAttribute) []string {
			return []string{formatIDPtr(ca.CategoryID), formatIDPtr(ca.AttributeID)}
		},
		func(ca *CategoryAttribute, v []string) error {
			categoryID, err := parseOptionalID("category", v[0])
			if err != nil {
				return err
			}
			attributeID, err := parseOptionalID("attribute", v[1])
			if err != nil {
				return err
			}
			if categoryID == nil || attributeID == nil {
				return fmt.Errorf("category and attribute are required")
			}
			ca.CategoryID = categoryID
			ca.AttributeID = attributeID
			return nil
		})
}
