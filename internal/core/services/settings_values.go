package services

import "math"

// Stored values arrive as TOML decoded them (int64, []any) or as Set
// parsed them (int, []int, []string). The helpers below accept both and
// treat anything else as unset.

func (s *SettingsService) lookup(key string) any {
	v, _ := s.configStore.Lookup(key)
	return v
}

func (s *SettingsService) str(key string) string {
	v, _ := s.lookup(key).(string)
	return v
}

func (s *SettingsService) strs(key string) []string {
	switch v := s.lookup(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		// A hand-edited file may hold a single goal as a plain string.
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

func (s *SettingsService) ints(key string) []int {
	var items []any
	switch v := s.lookup(key).(type) {
	case []int:
		return v
	case []int64:
		for _, n := range v {
			items = append(items, n)
		}
	case []any:
		items = v
	default:
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := asInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

// asInt accepts whole numbers of any width. Fractions are rejected.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
