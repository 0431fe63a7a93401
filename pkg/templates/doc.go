// Package templates holds the multi-locale template repository: templates
// with locale-tagged content variants, named groups of templates rendered
// together, a mutable Builder that validates and compiles them, and the
// immutable Repository produced by a successful build.
//
// Template expansion is delegated to a Compiler. The package never parses
// template syntax itself; see pkg/compiler/pongo for the bundled adapter.
package templates
