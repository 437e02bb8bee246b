package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Offer is a time-boxed discount campaign.
type Offer struct {
	ID              *int64
	Name            string
	DiscountPercent float64
	StartsAt        string
	EndsAt          string
	Active          bool
}

func offerSpec() resource.Spec[Offer] {
	return resource.Spec[Offer]{
		Name:         "offer",
		Endpoint:     "ofertas",
		FilterFields: []string{"search", "start_date", "end_date"},
		Defaults:     func() Offer { return Offer{Active: true} },
		Decode:       decodeOffer,
		Encode:       encodeOffer,
		ID:           func(o Offer) *int64 { return o.ID },
	}
}

func decodeOffer(r api.Record) Offer {
	return Offer{
		ID:              r.ID(),
		Name:            r.String("name"),
		DiscountPercent: r.Float(0, "discount_percent", "discountPercent"),
		StartsAt:        r.String("starts_at", "startsAt"),
		EndsAt:          r.String("ends_at", "endsAt"),
		Active:          r.Bool(true, "active", "is_active", "isActive"),
	}
}

func encodeOffer(o Offer) api.Payload {
	return api.Payload{Fields: map[string]any{
		"name":             o.Name,
		"discount_percent": o.DiscountPercent,
		"starts_at":        o.StartsAt,
		"ends_at":          o.EndsAt,
		"active":           o.Active,
	}}
}

var offerMeta = Meta{
	Title: "Offers",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Discount", Width: 10},
		{Title: "Starts", Width: 12},
		{Title: "Ends", Width: 12},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
		{Key: "start_date", Label: "Start date", Kind: FieldText},
		{Key: "end_date", Label: "End date", Kind: FieldText},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "discount_percent", Label: "Discount %", Kind: FieldNumber},
		{Key: "starts_at", Label: "Starts (YYYY-MM-DD)", Kind: FieldText},
		{Key: "ends_at", Label: "Ends (YYYY-MM-DD)", Kind: FieldText},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewOfferResource binds the offer entity.
func NewOfferResource(deps Deps) Resource {
	return Bind(deps, offerSpec(), offerMeta,
		func(o Offer) []string {
			return []string{
				formatIDPtr(o.ID), o.Name, formatFloat(o.DiscountPercent) + "%",
				o.StartsAt, o.EndsAt, formatToggle(o.Active),
			}
		},
		func(o Offer) []string {
			return []string{o.Name, formatFloat(o.DiscountPercent), o.StartsAt, o.EndsAt, formatToggle(o.Active)}
		},
		func(o *Offer, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("name is required")
			}
			discount, err := parseFloat("discount", v[1], 0)
			if err != nil {
				return err
			}
			if discount < 0 || discount > 100 {
				return fmt.Errorf("discount must be between 0 and 100")
			}
			o.Name = strings.TrimSpace(v[0])
			o.DiscountPercent = discount
			o.StartsAt = strings.TrimSpace(v[2])
			o.EndsAt = strings.TrimSpace(v[3])
			o.Active = parseToggle(v[4])
			return nil
		})
}
