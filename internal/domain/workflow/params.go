package workflow

// Params carries caller-supplied transition arguments. Values arrive as
// decoded JSON, so the getters tolerate the usual numeric widenings.
type Params map[string]interface{}

// GetString retrieves a string value from the params
func (p Params) GetString(key string) string {
	if val, ok := p[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// GetFloat retrieves a float64 value from the params
func (p Params) GetFloat(key string) (float64, bool) {
	if val, ok := p[key]; ok {
		switch v := val.(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

// GetInt retrieves an int64 value from the params
func (p Params) GetInt(key string) (int64, bool) {
	if val, ok := p[key]; ok {
		switch v := val.(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		case float64:
			return int64(v), true
		}
	}
	return 0, false
}

// GetStrings retrieves a string slice from the params. JSON arrays decode as
// []interface{}, so both shapes are accepted.
func (p Params) GetStrings(key string) []string {
	val, ok := p[key]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether the key is present at all
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}
