// Package backend turns a Smartra program into one of the output formats
// the compiler can emit.
package backend

import (
	"fmt"
	"sort"

	"github.com/lhaig/smartra/internal/ast"
)

// Backend is the interface that all output backends implement.
type Backend interface {
	// Name returns the backend name (e.g., "solidity", "ast")
	Name() string
	// Extension returns the file extension for written output, with the dot.
	Extension() string
	// Transformed reports whether Generate expects the program after
	// decorator transformation rather than as written.
	Transformed() bool
	// Generate produces output text from a program.
	Generate(prog *ast.Program) string
}

var backends = map[string]Backend{}

func register(b Backend) {
	backends[b.Name()] = b
}

func init() {
	register(&SolidityBackend{})
	register(&SmartraBackend{})
	register(&TreeBackend{})
	register(&DumpBackend{})
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown emit target: %s (available: %v)", name, Names())
	}
	return b, nil
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
