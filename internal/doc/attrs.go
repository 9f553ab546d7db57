package doc

// Attrs is a flat map of scalar node properties. Values come from JSON, so
// numbers may arrive as float64; the getters normalize.
type Attrs map[string]any

func (a Attrs) String(key string) string {
	if a == nil {
		return ""
	}
	v, ok := a[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (a Attrs) Int(key string) int {
	if a == nil {
		return 0
	}
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (a Attrs) Float(key string) float64 {
	if a == nil {
		return 0
	}
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (a Attrs) Bool(key string) bool {
	if a == nil {
		return false
	}
	b, _ := a[key].(bool)
	return b
}

func (a Attrs) Has(key string) bool {
	if a == nil {
		return false
	}
	_, ok := a[key]
	return ok
}

func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Eq compares two attr maps by scalar equality.
func (a Attrs) Eq(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
