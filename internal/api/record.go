package api

import "strconv"

// Record is a decoded wire object. The backend is inconsistent about key
// casing (es_variable vs esVariable), so accessors take every spelling a
// field is known to arrive under and return the first one present. Entity
// adapters in the catalog package are the single place these fallbacks live.
type Record map[string]any

// String returns the first present string value among keys, or "".
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// Bool returns the first present boolean value among keys, or def.
func (r Record) Bool(def bool, keys ...string) bool {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return def
}

// Int returns the first present integer value among keys, or nil.
// JSON numbers arrive as float64; numeric strings are tolerated because the
// backend serializes foreign keys both ways.
func (r Record) Int(keys ...string) *int64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			n := int64(t)
			return &n
		case int64:
			n := t
			return &n
		case int:
			n := int64(t)
			return &n
		case string:
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// Float returns the first present numeric value among keys, or def.
func (r Record) Float(def float64, keys ...string) float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case int64:
			return float64(t)
		case int:
			return float64(t)
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f
			}
		}
	}
	return def
}

// Sub returns the first present nested object among keys, or nil.
func (r Record) Sub(keys ...string) Record {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if m, ok := v.(map[string]any); ok {
				return Record(m)
			}
		}
	}
	return nil
}

// ID returns the record identity, or nil for unsaved records.
func (r Record) ID() *int64 {
	return r.Int("id")
}
