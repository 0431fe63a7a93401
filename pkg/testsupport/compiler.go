package testsupport

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// StubCompiler is an in-memory compiler for tests that need deterministic
// failures. Rendering replaces "{{key}}" placeholders with fmt.Sprint of the
// matching data value and leaves everything else verbatim.
type StubCompiler struct {
	mu sync.Mutex

	// CompileErr, when set, is returned for bodies containing FailMarker.
	CompileErr error
	// RenderErr, when set, is returned for bodies containing FailMarker at
	// render time.
	RenderErr error
	// FailMarker selects which bodies fail. Defaults to "!fail".
	FailMarker string

	bodies map[string]string
	order  []string
}

// NewStubCompiler returns an empty stub compiler.
func NewStubCompiler() *StubCompiler {
	return &StubCompiler{bodies: make(map[string]string)}
}

// Compile records body under name.
func (c *StubCompiler) Compile(name, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.CompileErr != nil && strings.Contains(body, c.marker()) {
		return c.CompileErr
	}
	if c.bodies == nil {
		c.bodies = make(map[string]string)
	}
	c.bodies[name] = body
	c.order = append(c.order, name)
	return nil
}

// Render expands the body stored under name.
func (c *StubCompiler) Render(name string, data map[string]any) (string, error) {
	c.mu.Lock()
	body, ok := c.bodies[name]
	c.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("stub: template %q not compiled", name)
	}
	if c.RenderErr != nil && strings.Contains(body, c.marker()) {
		return "", c.RenderErr
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := body
	for _, key := range keys {
		out = strings.ReplaceAll(out, "{{"+key+"}}", fmt.Sprint(data[key]))
	}
	return out, nil
}

// Compiled returns handle names in compile order.
func (c *StubCompiler) Compiled() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Body returns the raw body compiled under name.
func (c *StubCompiler) Body(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.bodies[name]
	return body, ok
}

func (c *StubCompiler) marker() string {
	if c.FailMarker == "" {
		return "!fail"
	}
	return c.FailMarker
}
