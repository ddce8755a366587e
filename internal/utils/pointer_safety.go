package utils

// Value dereferences p, returning the zero value when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// Ptr returns a pointer to v. Useful for the optional profile fields.
func Ptr[T any](v T) *T {
	return &v
}
