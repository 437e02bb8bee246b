package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Product is a sellable item.
type Product struct {
	ID            *int64
	Name          string
	Description   string
	SKU           string
	Price         float64
	Stock         int64
	CategoryID    *int64
	SubcategoryID *int64
	BrandID       *int64
	Image         Attachment
	Active        bool
}

func productSpec() resource.Spec[Product] {
	return resource.Spec[Product]{
		Name:         "product",
		Endpoint:     "productos",
		FilterFields: []string{"search", "category_id", "brand_id"},
		Defaults:     func() Product { return Product{Active: true} },
		Decode:       decodeProduct,
		Encode:       encodeProduct,
		ID:           func(p Product) *int64 { return p.ID },
	}
}

func decodeProduct(r api.Record) Product {
	stock := int64(0)
	if n := r.Int("stock"); n != nil {
		stock = *n
	}
	return Product{
		ID:            r.ID(),
		Name:          r.String("name"),
		Description:   r.String("description", "descripcion"),
		SKU:           r.String("sku"),
		Price:         r.Float(0, "price", "precio"),
		Stock:         stock,
		CategoryID:    r.Int("category_id", "categoryId", "categoria_id"),
		SubcategoryID: r.Int("subcategory_id", "subcategoryId", "subcategoria_id"),
		BrandID:       r.Int("brand_id", "brandId", "marca_id"),
		Image:         Attachment{URL: r.String("image_url", "imageUrl", "image")},
		Active:        r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeProduct(p Product) api.Payload {
	fields := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"sku":         p.SKU,
		"price":       p.Price,
		"stock":       p.Stock,
		"active":      p.Active,
	}
	if p.CategoryID != nil {
		fields["category_id"] = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		fields["subcategory_id"] = *p.SubcategoryID
	}
	if p.BrandID != nil {
		fields["brand_id"] = *p.BrandID
	}
	payload := api.Payload{Fields: fields}
	if p.Image.Pending() {
		payload.Files = map[string]api.Upload{"image": {Path: p.Image.File}}
	}
	return payload
}

var productMeta = Meta{
	Title: "Products",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 26},
		{Title: "SKU", Width: 12},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 8},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
		{Key: "category_id", Label: "Category ID", Kind: FieldNumber},
		{Key: "brand_id", Label: "Brand ID", Kind: FieldNumber},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "description", Label: "Description", Kind: FieldText},
		{Key: "sku", Label: "SKU", Kind: FieldText},
		{Key: "price", Label: "Price", Kind: FieldNumber},
		{Key: "stock", Label: "Stock", Kind: FieldNumber},
		{Key: "category_id", Label: "Category ID", Kind: FieldNumber},
		{Key: "subcategory_id", Label: "Subcategory ID", Kind: FieldNumber},
		{Key: "brand_id", Label: "Brand ID", Kind: FieldNumber},
		{Key: "image", Label: "Image", Kind: FieldFile},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewProductResource binds the product entity.
func NewProductResource(deps Deps) Resource {
	return Bind(deps, productSpec(), productMeta,
		func(p Product) []string {
			return []string{
				formatIDPtr(p.ID), p.Name, p.SKU,
				formatFloat(p.Price), strconv.FormatInt(p.Stock, 10), formatToggle(p.Active),
			}
		},
		func(p Product) []string {
			return []string{
				p.Name, p.Description, p.SKU, formatFloat(p.Price),
				strconv.FormatInt(p.Stock, 10), formatIDPtr(p.CategoryID),
				formatIDPtr(p.SubcategoryID), formatIDPtr(p.BrandID),
				p.Image.Display(), formatToggle(p.Active),
			}
		},
		func(p *Product, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("name is required")
			}
			price, err := parseFloat("price", v[3], 0)
			if err != nil {
				return err
			}
			stock, err := parseInt("stock", v[4], 0)
			if err != nil {
				return err
			}
			categoryID, err := parseOptionalID("category", v[5])
			if err != nil {
				return err
			}
			if categoryID == nil {
				return fmt.Errorf("category is required")
			}
			subcategoryID, err := parseOptionalID("subcategory", v[6])
			if err != nil {
				return err
			}
			brandID, err := parseOptionalID("brand", v[7])
			if err != nil {
				return err
			}

			p.Name = strings.TrimSpace(v[0])
			p.Description = v[1]
			p.SKU = strings.TrimSpace(v[2])
			p.Price = price
			p.Stock = stock
			p.CategoryID = categoryID
			p.SubcategoryID = subcategoryID
			p.BrandID = brandID
			p.Image = applyAttachmentValue(p.Image, strings.TrimSpace(v[8]))
			p.Active = parseToggle(v[9])
			return nil
		})
}
