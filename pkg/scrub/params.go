package scrub

// Params carries the operation-specific parameters of a rule. Values come
// from config files, so numeric entries may arrive as int, int64, or
// float64; the accessors normalize.
type Params map[string]any

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Params) Any(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

func (p Params) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// StringOr returns the string at key, or def when absent or not a string.
func (p Params) StringOr(key, def string) string {
	if v, ok := p.String(key); ok {
		return v
	}
	return def
}

func (p Params) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

func (p Params) BoolOr(key string, def bool) bool {
	if v, ok := p.Bool(key); ok {
		return v
	}
	return def
}

func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (p Params) FloatOr(key string, def float64) float64 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

// List returns the entry at key as a slice, accepting both []any (YAML) and
// []string (programmatic) forms.
func (p Params) List(key string) ([]any, bool) {
	switch v := p[key].(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
