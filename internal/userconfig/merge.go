package userconfig

import "reflect"

// DeepMerge merges src into dst and returns the result without modifying
// either. Objects merge key by key, arrays concatenate (dst first), and
// any other src value replaces dst.
//
// koanf's own merge replaces arrays, which would drop earlier plugins and
// aliases, so array-aware merging is done here.
func DeepMerge(dst, src any) any {
	if dm, ok := dst.(map[string]any); ok {
		if sm, ok := src.(map[string]any); ok {
			out := make(map[string]any, len(dm)+len(sm))
			for k, v := range dm {
				out[k] = v
			}
			for k, v := range sm {
				if cur, exists := out[k]; exists {
					out[k] = DeepMerge(cur, v)
					continue
				}
				out[k] = v
			}
			return out
		}
		return src
	}

	ds, dok := toSlice(dst)
	ss, sok := toSlice(src)
	if dok && sok {
		out := make([]any, 0, len(ds)+len(ss))
		out = append(out, ds...)
		return append(out, ss...)
	}
	return src
}

// toSlice widens any slice to []any.
func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
