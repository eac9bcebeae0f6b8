package core

// Engine compiles bundle source text into an invocable Renderer. It is the
// only capability the dispatcher needs from a JavaScript embedding, so any
// engine (QuickJS, V8, or a test double) can back it.
type Engine interface {
	// Compile evaluates source and binds its render entry point. The
	// returned Renderer is not safe for concurrent use.
	Compile(source string) (Renderer, error)
}

// Renderer is a compiled bundle bound to a single engine instance.
type Renderer interface {
	// Render invokes the bundle's render entry point with payload and
	// returns the produced HTML.
	Render(payload string) (string, error)

	// Close releases the underlying engine instance. Render must not be
	// called after Close.
	Close()
}
