package extract

// Lookup follows path through nested JSON objects starting at root. It returns
// nil as soon as a key is missing, a value along the way is null or a value
// that still has keys left to follow is not an object.
func Lookup(root any, path ...string) any {
	v := root
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v, ok = obj[key]
		if !ok || v == nil {
			return nil
		}
	}
	return v
}

// LookupString is Lookup for string leaves. Any other leaf type yields nil.
func LookupString(root any, path ...string) *string {
	s, ok := Lookup(root, path...).(string)
	if !ok {
		return nil
	}
	return &s
}

// LookupFloat is Lookup for numeric leaves. Any other leaf type yields nil.
func LookupFloat(root any, path ...string) *float64 {
	f, ok := Lookup(root, path...).(float64)
	if !ok {
		return nil
	}
	return &f
}
