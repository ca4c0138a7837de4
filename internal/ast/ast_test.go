package ast

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenProgram() *Program {
	balances, _ := MappingOf(Scalar("address"), Scalar("uint256"))
	return &Program{
		Contracts: []*Contract{{
			Name:       "Token",
			Decorators: []*Decorator{{Name: "safe_math"}},
			State: &StateDeclaration{Variables: []*StateVariable{
				{Name: "owner", Type: Scalar("address"), InitialValue: &Identifier{Name: CallerIdentity}},
				{Name: "balances", Type: balances},
				{Name: "totalSupply", Type: Scalar("uint256"), InitialValue: &Literal{Value: "1000000", Kind: NumberLit}},
			}},
			Functions: []*Function{{
				Name: "mint",
				Parameters: []*Parameter{
					{Name: "to", Type: Scalar("address")},
					{Name: "amount", Type: Scalar("uint256")},
				},
				Decorators: []*Decorator{{Name: "only_owner"}},
				Body: []Statement{
					&AssignmentStatement{
						Target:   &LValue{Name: "balances", Indices: []Expression{&Identifier{Name: "to"}}},
						Operator: "+=",
						Value:    &Identifier{Name: "amount"},
					},
					&EmitStatement{Event: "Transfer", Args: []Expression{
						&Literal{Value: "address(0)", Kind: AddressLit},
						&Identifier{Name: "to"},
						&Identifier{Name: "amount"},
					}},
				},
			}},
			Events: []*Event{{Name: "Transfer", Parameters: []*Parameter{
				{Name: "from", Type: Scalar("address")},
			}}},
		}},
	}
}

func TestTypeBuilders(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*Type, error)
		want    string
		wantErr bool
	}{
		{
			name:  "mapping",
			build: func() (*Type, error) { return MappingOf(Scalar("address"), Scalar("uint256")) },
			want:  "mapping(address => uint256)",
		},
		{
			name: "nested mapping",
			build: func() (*Type, error) {
				inner, err := MappingOf(Scalar("address"), Scalar("uint256"))
				if err != nil {
					return nil, err
				}
				return MappingOf(Scalar("address"), inner)
			},
			want: "mapping(address => mapping(address => uint256))",
		},
		{
			name:  "array",
			build: func() (*Type, error) { return ArrayOf(Scalar("uint256")) },
			want:  "uint256[]",
		},
		{
			name:    "mapping without value",
			build:   func() (*Type, error) { return MappingOf(Scalar("address"), nil) },
			wantErr: true,
		},
		{
			name:    "array without element",
			build:   func() (*Type, error) { return ArrayOf(nil) },
			wantErr: true,
		},
		{
			name:    "scalar with key",
			build:   func() (*Type, error) { return NewType("uint256", Scalar("address"), nil) },
			wantErr: true,
		},
		{
			name:    "malformed nested value",
			build:   func() (*Type, error) { return MappingOf(Scalar("address"), &Type{Name: MappingType}) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := tt.build()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedType), "error %v should wrap ErrMalformedType", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ.String())
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := tokenProgram()
	orig.SetMeta(MetaTargetVersion, "^0.8.0")
	cp := Clone(orig)

	if diff := cmp.Diff(orig, cp); diff != "" {
		t.Fatalf("clone differs from original (-orig +clone):\n%s", diff)
	}

	c := cp.Contracts[0]
	c.Name = "Other"
	c.State.Variables[0].Type.Name = "uint8"
	c.Functions[0].Modifiers = append(c.Functions[0].Modifiers, "onlyOwner")
	c.Functions[0].Body[0].(*AssignmentStatement).Target.(*LValue).Indices[0].(*Identifier).Name = "from"
	c.Modifiers = append(c.Modifiers, &Modifier{Name: "onlyOwner"})
	cp.SetMeta(MetaTargetVersion, "^0.7.0")

	oc := orig.Contracts[0]
	assert.Equal(t, "Token", oc.Name)
	assert.Equal(t, "address", oc.State.Variables[0].Type.Name)
	assert.Empty(t, oc.Functions[0].Modifiers)
	assert.Empty(t, oc.Modifiers)
	assert.Equal(t, "to", oc.Functions[0].Body[0].(*AssignmentStatement).Target.(*LValue).Indices[0].(*Identifier).Name)
	assert.Equal(t, "^0.8.0", orig.Meta(MetaTargetVersion))
}

func TestCloneNil(t *testing.T) {
	assert.Nil(t, Clone(nil))
	assert.Nil(t, CloneContract(nil))
	assert.Nil(t, CloneType(nil))
	assert.Nil(t, CloneExpression(nil))
}

func TestContractAccessors(t *testing.T) {
	c := tokenProgram().Contracts[0]

	assert.True(t, c.HasDecorator("safe_math"))
	assert.False(t, c.HasDecorator("only_owner"))
	assert.NotNil(t, c.StateVariable("balances"))
	assert.Nil(t, c.StateVariable("missing"))
	assert.NotNil(t, c.Function("mint"))
	assert.NotNil(t, c.Event("Transfer"))
	assert.Nil(t, c.Modifier("onlyOwner"))
	assert.True(t, c.Function("mint").HasDecorator("only_owner"))

	empty := &Contract{Name: "Empty"}
	assert.Nil(t, empty.StateVariables())
	assert.Nil(t, empty.StateVariable("owner"))
}

func TestProgramMetadata(t *testing.T) {
	p := &Program{}
	assert.Equal(t, "", p.Meta(MetaUsesSafeMath))
	p.SetMeta(MetaUsesSafeMath, "true")
	assert.Equal(t, "true", p.Meta(MetaUsesSafeMath))
}

func TestPrint(t *testing.T) {
	out := Print(tokenProgram())

	for _, want := range []string{
		"Program",
		"Contract: Token (@safe_math)",
		"owner: address = msg.sender",
		"balances: mapping(address => uint256)",
		"Function: mint (@only_owner)",
		"Params: to: address, amount: uint256",
		"Assign: balances[to] += amount",
		"Emit: Transfer(address(0), to, amount)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDump(t *testing.T) {
	out := Dump(tokenProgram())
	assert.Contains(t, out, `Name: (string) (len=5) "Token"`)
	assert.NotContains(t, out, "0xc0", "dump should not contain pointer addresses")
}

type customExpr struct{ Identifier }

func TestKindName(t *testing.T) {
	assert.Equal(t, "EmitStatement", KindName(&EmitStatement{}))
	assert.Equal(t, "customExpr", KindName(&customExpr{}))
	assert.Equal(t, "<nil>", KindName(nil))
}
