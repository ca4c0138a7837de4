package transform

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/lhaig/smartra/internal/ast"
)

// Names synthesized by the owner restriction. They are shared by every
// function of a contract.
const (
	OwnerVariable   = "owner"
	OwnerModifier   = "onlyOwner"
	OwnerRevertText = "Caller is not the owner"
)

// OnlyOwner returns the transformer behind @only_owner. It makes sure the
// contract has an owner address and an onlyOwner modifier, then attaches
// the modifier to the decorated function. The owner is not initialized
// inline; the generator assigns it in a constructor.
func OnlyOwner() Transformer {
	return TransformerFunc(func(site Site) {
		c, fn := site.Contract, site.Function
		log.Info("Applying owner restriction", "contract", c.Name, "function", fn.Name)

		if ensureStateVariable(c, &ast.StateVariable{
			Name: OwnerVariable,
			Type: ast.Scalar("address"),
		}) {
			log.Debug("Added owner state variable", "contract", c.Name)
		}
		if ensureModifier(c, ownerModifier()) {
			log.Debug("Added modifier", "contract", c.Name, "modifier", OwnerModifier)
		}
		attachModifier(fn, OwnerModifier)
	})
}

func ownerModifier() *ast.Modifier {
	return &ast.Modifier{
		Name: OwnerModifier,
		Body: []ast.Statement{
			&ast.RequireStatement{
				Condition: &ast.BinaryExpression{
					Left:     &ast.Identifier{Name: ast.CallerIdentity},
					Operator: "==",
					Right:    &ast.Identifier{Name: OwnerVariable},
				},
				Message: &ast.Literal{Value: `"` + OwnerRevertText + `"`, Kind: ast.StringLit},
			},
			&ast.PlaceholderStatement{},
		},
	}
}

// ensureStateVariable appends v unless a variable with the same name is
// already declared. It reports whether v was added.
func ensureStateVariable(c *ast.Contract, v *ast.StateVariable) bool {
	if c.StateVariable(v.Name) != nil {
		return false
	}
	if c.State == nil {
		c.State = &ast.StateDeclaration{}
	}
	c.State.Variables = append(c.State.Variables, v)
	return true
}

// ensureModifier appends m unless a modifier with the same name exists.
func ensureModifier(c *ast.Contract, m *ast.Modifier) bool {
	if c.Modifier(m.Name) != nil {
		return false
	}
	c.Modifiers = append(c.Modifiers, m)
	return true
}

func attachModifier(fn *ast.Function, name string) {
	if !fn.HasModifier(name) {
		fn.Modifiers = append(fn.Modifiers, name)
	}
}
