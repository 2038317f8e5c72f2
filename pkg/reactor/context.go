package reactor

// Context provides typed, lexically scoped values through the ownership
// tree: a value provided on a node is visible to that node and all of its
// descendants unless a descendant overrides it.
//
// Create a context once (typically package-level), provide a value on an
// owner or through a Builder, and read it anywhere below:
//
//	var Theme = reactor.NewContext("light")
//
//	reactor.ProvideContext(b, Theme, "dark")
//	theme := reactor.UseContext(b, Theme)
type Context[T any] struct {
	// key uniquely identifies this context in owner value maps.
	key any

	// def is returned when no provider exists up the tree.
	def T
}

// contextKey wraps the context pointer to form a unique key type.
type contextKey[T any] struct {
	ctx *Context[T]
}

// NewContext creates a context with the given default value.
func NewContext[T any](def T) *Context[T] {
	c := &Context[T]{def: def}
	c.key = contextKey[T]{ctx: c}
	return c
}

// Default returns the context's default value.
func (c *Context[T]) Default() T {
	return c.def
}

// Provide stores a value for this context on the given owner.
func (c *Context[T]) Provide(o *Owner, value T) {
	o.SetContext(c.key, value)
}

// Get reads the context value visible from the given owner, walking up
// through parents. Returns the default when no provider is found.
func (c *Context[T]) Get(o *Owner) T {
	if v, ok := o.GetContext(c.key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	return c.def
}
