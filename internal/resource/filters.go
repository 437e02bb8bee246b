package resource

// Filters maps filter-field name to value. An empty string means "no
// constraint"; known fields are kept in the map so clearing restores the
// all-empty shape rather than deleting keys.
type Filters map[string]string

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// NonEmpty returns only the fields that actually constrain the query.
func (f Filters) NonEmpty() map[string]string {
	out := make(map[string]string)
	for k, v := range f {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// emptyFilters builds an all-empty filter set for the given field names.
func emptyFilters(fields []string) Filters {
	f := make(Filters, len(fields))
	for _, name := range fields {
		f[name] = ""
	}
	return f
}
