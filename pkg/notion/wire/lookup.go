package wire

// Lookup walks a decoded JSON document along path, where each step is either
// a string key into a mapping or an int index into an array. It returns the
// value at the end of the path and whether every step resolved, instead of
// panicking on missing members the way attribute style access would.
func Lookup(doc any, path ...any) (any, bool) {
	current := doc

	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			current, ok = m[key]
			if !ok {
				return nil, false
			}
		case int:
			arr, ok := current.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			current = arr[key]
		default:
			return nil, false
		}
	}

	return current, true
}

// LookupString is Lookup narrowed to string results.
func LookupString(doc any, path ...any) (string, bool) {
	v, ok := Lookup(doc, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// LookupNumber is Lookup narrowed to numeric results.
func LookupNumber(doc any, path ...any) (float64, bool) {
	v, ok := Lookup(doc, path...)
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}
