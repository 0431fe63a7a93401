package templates

// Context is the data a template is rendered against. Keys and values are
// opaque to the repository and passed straight to the Compiler.
type Context = map[string]any

// Compiler compiles raw template bodies into named handles and renders them.
// Implementations must tolerate concurrent Render calls once compilation is
// done, since a built Repository may be shared across goroutines.
//
// A Repository renders through the compiler its build compiled into. Handle
// names (template#N) restart at 1 for every build, so a plain Compiler must
// not be shared between builders: a later build overwrites the handles of an
// earlier repository. Implement SetCompiler to make sharing safe.
type Compiler interface {
	Compile(name, body string) error
	Render(name string, data Context) (string, error)
}

// SetCompiler is a Compiler that can open an empty handle namespace sharing
// its configuration (loaders, globals, helper functions). Build compiles into
// a fresh set from NewSet, and the resulting Repository owns that set.
type SetCompiler interface {
	Compiler
	NewSet() Compiler
}

// OutputFilter post-processes rendered text (sanitising, trimming, etc.).
type OutputFilter func(rendered string) (string, error)
