package quiz

// DecodePairs reads factor pairs back from persisted state, which holds
// either []Pair or its JSON shape ([]any of two-element []any). Returns nil
// if v has a different shape. Callers pass values through persist.Sanitize
// first so both shapes look alike.
func DecodePairs(v any) []Pair {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Pair, 0, len(items))
	for _, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil
		}
		a, ok1 := pair[0].(int64)
		b, ok2 := pair[1].(int64)
		if !ok1 || !ok2 {
			return nil
		}
		out = append(out, Pair{int(a), int(b)})
	}
	return out
}

// DecodeVariants is DecodePairs for a list of answer variants.
func DecodeVariants(v any) [][]Pair {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([][]Pair, 0, len(items))
	for _, item := range items {
		pairs := DecodePairs(item)
		if pairs == nil {
			return nil
		}
		out = append(out, pairs)
	}
	return out
}
