// Package pongo adapts github.com/flosch/pongo2/v6 to the templates.Compiler
// contract. Variants are compiled once into an in-memory template set and
// rendered by handle name; includes and extends resolve against an optional
// base directory or fs.FS.
package pongo
