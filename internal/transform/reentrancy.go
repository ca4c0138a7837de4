package transform

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/lhaig/smartra/internal/ast"
)

const (
	lockPrefix           = "_reentrancyLock_"
	guardPrefix          = "nonReentrant_"
	ReentrancyRevertText = "ReentrancyGuard: reentrant call"
)

// LockVariable returns the name of the lock flag guarding function fn.
func LockVariable(fn string) string { return lockPrefix + fn }

// GuardModifier returns the name of the modifier guarding function fn.
func GuardModifier(fn string) string { return guardPrefix + fn }

// ReentrancyGuard returns the transformer behind @reentrancy_guard. Each
// decorated function gets its own lock flag and modifier, so guarded
// functions may still call each other.
func ReentrancyGuard() Transformer {
	return TransformerFunc(func(site Site) {
		c, fn := site.Contract, site.Function
		lock, guard := LockVariable(fn.Name), GuardModifier(fn.Name)
		log.Info("Applying reentrancy guard", "contract", c.Name, "function", fn.Name, "modifier", guard)

		ensureStateVariable(c, &ast.StateVariable{
			Name:         lock,
			Type:         ast.Scalar("bool"),
			InitialValue: &ast.Literal{Value: "false", Kind: ast.BoolLit},
		})
		ensureModifier(c, guardModifier(guard, lock))
		attachModifier(fn, guard)
	})
}

func guardModifier(name, lock string) *ast.Modifier {
	setLock := func(value string) *ast.AssignmentStatement {
		return &ast.AssignmentStatement{
			Target:   &ast.Identifier{Name: lock},
			Operator: "=",
			Value:    &ast.Literal{Value: value, Kind: ast.BoolLit},
		}
	}
	return &ast.Modifier{
		Name: name,
		Body: []ast.Statement{
			&ast.RequireStatement{
				Condition: &ast.BinaryExpression{
					Left:     &ast.Identifier{Name: lock},
					Operator: "==",
					Right:    &ast.Literal{Value: "false", Kind: ast.BoolLit},
				},
				Message: &ast.Literal{Value: `"` + ReentrancyRevertText + `"`, Kind: ast.StringLit},
			},
			setLock("true"),
			&ast.PlaceholderStatement{},
			setLock("false"),
		},
	}
}
