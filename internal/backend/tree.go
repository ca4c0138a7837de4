package backend

import "github.com/lhaig/smartra/internal/ast"

// TreeBackend prints the transformed AST as an indented tree.
type TreeBackend struct{}

func (b *TreeBackend) Name() string      { return "ast" }
func (b *TreeBackend) Extension() string { return ".ast" }
func (b *TreeBackend) Transformed() bool { return true }

func (b *TreeBackend) Generate(prog *ast.Program) string {
	return ast.Print(prog)
}

// DumpBackend prints a full go-spew dump of the transformed AST,
// including metadata.
type DumpBackend struct{}

func (b *DumpBackend) Name() string      { return "dump" }
func (b *DumpBackend) Extension() string { return ".dump" }
func (b *DumpBackend) Transformed() bool { return true }

func (b *DumpBackend) Generate(prog *ast.Program) string {
	return ast.Dump(prog)
}
