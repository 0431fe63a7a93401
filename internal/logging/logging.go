// Package logging wires go-logger into the templates.Logger contract and
// provides module-scoped helpers for the CLI and facade.
package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-templateset/pkg/templates"
)

const (
	// RootModule is the logger namespace used when none is supplied.
	RootModule = "templateset"
	// BuilderModule scopes build-time logging.
	BuilderModule = "templateset.builder"
	// CLIModule scopes the command line tool.
	CLIModule = "templateset.cli"
)

// LoggerProvider hands out named loggers.
type LoggerProvider interface {
	GetLogger(name string) templates.Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) templates.Logger
}

// NoOp returns a logger that discards everything.
func NoOp() templates.Logger {
	return noop{}
}

type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}

// WithFields attaches fields when logger supports them and returns logger
// unchanged otherwise.
func WithFields(logger templates.Logger, fields map[string]any) templates.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}
	return logger
}

// ModuleLogger returns the logger for module tagged with a "module" field,
// or a no-op logger when provider is nil.
func ModuleLogger(provider LoggerProvider, module string) templates.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = RootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}
