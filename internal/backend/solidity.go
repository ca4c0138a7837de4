package backend

import (
	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/codegen"
)

// SolidityBackend wraps codegen as a Backend implementation.
type SolidityBackend struct{}

// Name returns the backend name.
func (b *SolidityBackend) Name() string {
	return "solidity"
}

// Extension returns the Solidity source extension.
func (b *SolidityBackend) Extension() string {
	return ".sol"
}

// Transformed is true: Solidity is generated from the transformed program.
func (b *SolidityBackend) Transformed() bool {
	return true
}

// Generate produces Solidity source code from a transformed program.
func (b *SolidityBackend) Generate(prog *ast.Program) string {
	return codegen.Generate(prog)
}
