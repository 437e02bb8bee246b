package resource

import "github.com/tiendactl/tiendactl/internal/api"

// Spec is the per-entity configuration that parameterizes a store and
// controller pair. One Spec value per resource type replaces the
// hand-copied per-entity state code an admin client usually accumulates.
type Spec[T any] struct {
	// Name is the human-readable singular ("category"), used in alerts.
	Name string

	// Endpoint is the REST namespace ("categorias").
	Endpoint string

	// HardDelete marks entities whose delete is permanent (backend answers
	// 200 instead of 204 and exposes no restore endpoint).
	HardDelete bool

	// ReadOnly suppresses create/update/delete (orders).
	ReadOnly bool

	// FilterFields lists the filter-bar field names for this entity.
	FilterFields []string

	// Defaults returns a fresh draft with the entity's documented defaults.
	Defaults func() T

	// Decode maps a wire record into a draft, tolerating both snake_case
	// and camelCase keys and applying defaults for absent fields.
	Decode func(api.Record) T

	// Encode builds the outgoing payload from a draft. A pending file
	// attachment switches the request to multipart.
	Encode func(T) api.Payload

	// ID extracts the identity field; nil means the draft is unsaved.
	ID func(T) *int64
}
