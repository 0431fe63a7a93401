package templates

// Option configures a Builder.
type Option func(*Builder)

// WithCompiler sets the compiler used to turn variants into renderable
// handles. Build fails with ErrCompilerRequired when none is configured.
func WithCompiler(compiler Compiler) Option {
	return func(b *Builder) {
		b.compiler = compiler
	}
}

// WithLogger routes build diagnostics to logger.
func WithLogger(logger Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithoutGroupValidation skips the group integrity check during Build.
// Groups pointing at unknown templates then fail at render time with
// ErrTemplateNotFound.
func WithoutGroupValidation() Option {
	return func(b *Builder) {
		b.skipGroupCheck = true
	}
}

// WithStrictLocales makes Build reject templates whose variants tag the same
// locale more than once instead of letting the later variant win.
func WithStrictLocales() Option {
	return func(b *Builder) {
		b.strictLocales = true
	}
}

// WithOutputFilter appends a filter applied to every rendered text. Filters
// run in registration order.
func WithOutputFilter(filter OutputFilter) Option {
	return func(b *Builder) {
		if filter != nil {
			b.filters = append(b.filters, filter)
		}
	}
}
