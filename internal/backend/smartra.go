package backend

import (
	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/formatter"
)

// SmartraBackend wraps the formatter as a Backend implementation. It
// re-emits the program as canonical Smartra source.
type SmartraBackend struct{}

// Name returns the backend name.
func (b *SmartraBackend) Name() string {
	return "smartra"
}

// Extension returns the Smartra source extension.
func (b *SmartraBackend) Extension() string {
	return ".sl"
}

// Transformed is false: formatting works on the program as written.
func (b *SmartraBackend) Transformed() bool {
	return false
}

// Generate produces canonical Smartra source.
func (b *SmartraBackend) Generate(prog *ast.Program) string {
	return formatter.Format(prog)
}
