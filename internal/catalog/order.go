package catalog

import (
	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Order is a customer purchase. Orders are placed by the storefront; the
// dashboard only browses them.
type Order struct {
	ID        *int64
	Customer  string
	Status    string
	Total     float64
	CreatedAt string
}

func orderSpec() resource.Spec[Order] {
	return resource.Spec[Order]{
		Name:         "order",
		Endpoint:     "pedidos",
		ReadOnly:     true,
		FilterFields: []string{"search", "status", "start_date", "end_date"},
		Defaults:     func() Order { return Order{} },
		Decode:       decodeOrder,
		Encode:       func(Order) api.Payload { return api.Payload{} },
		ID:           func(o Order) *int64 { return o.ID },
	}
}

func decodeOrder(r api.Record) Order {
	return Order{
		ID:        r.ID(),
		Customer:  r.String("customer", "cliente", "customer_name", "customerName"),
		Status:    r.String("status", "estado"),
		Total:     r.Float(0, "total"),
		CreatedAt: r.String("created_at", "createdAt", "fecha"),
	}
}

var orderMeta = Meta{
	Title: "Orders",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Customer", Width: 24},
		{Title: "Status", Width: 12},
		{Title: "Total", Width: 10},
		{Title: "Created", Width: 20},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
		{Key: "status", Label: "Status", Kind: FieldText},
		{Key: "start_date", Label: "From (YYYY-MM-DD)", Kind: FieldText},
		{Key: "end_date", Label: "To (YYYY-MM-DD)", Kind: FieldText},
	},
}

// NewOrderResource binds the order entity. No form fields: the resource is
// read-only and the binding's mutating operations are never dispatched.
func NewOrderResource(deps Deps) Resource {
	return Bind(deps, orderSpec(), orderMeta,
		func(o Order) []string {
			return []string{formatIDPtr(o.ID), o.Customer, o.Status, formatFloat(o.Total), o.CreatedAt}
		},
		func(o Order) []string { return nil },
		func(o *Order, v []string) error { return nil })
}
