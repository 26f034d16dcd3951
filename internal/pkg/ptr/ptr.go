package ptr

func Of[T any](v T) *T {
	return &v
}

// NonZero returns nil for the zero value, so optional JSON fields are omitted.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Deref returns the zero value for nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
