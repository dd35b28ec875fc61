package shape

// Cached holds a lazily computed value. The owner calls Invalidate whenever an
// input changes; Get recomputes on the next read.
type Cached[T any] struct {
	value T
	valid bool
}

// Get returns the cached value, computing it first if it is absent.
func (c *Cached[T]) Get(compute func() T) T {
	if !c.valid {
		c.value = compute()
		c.valid = true
	}
	return c.value
}

// Invalidate drops the cached value.
func (c *Cached[T]) Invalidate() {
	var zero T
	c.value = zero
	c.valid = false
}

// Valid reports whether a value is currently cached.
func (c *Cached[T]) Valid() bool {
	return c.valid
}
