package transform

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/parser"
)

const tokenSource = `contract Token:
    @safe_math
    state:
        owner: address = msg.sender
        balances: mapping(address => uint256)
        totalSupply: uint256 = 1000000

    event Transfer(from: address, to: address, amount: uint256)

    @only_owner
    function mint(to: address, amount: uint256):
        balances[to] += amount
        totalSupply += amount
        emit Transfer(address(0), to, amount)

    @reentrancy_guard
    function transfer(to: address, amount: uint256) -> bool:
        require(balances[msg.sender] >= amount, "Insufficient balance")
        balances[msg.sender] -= amount
        balances[to] += amount
        emit Transfer(msg.sender, to, amount)
        return true
`

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseSource(src)
	require.NoError(t, err)
	return prog
}

func decorated(fns map[string][]string, order ...string) *ast.Program {
	c := &ast.Contract{Name: "Vault"}
	for _, name := range order {
		fn := &ast.Function{Name: name}
		for _, d := range fns[name] {
			fn.Decorators = append(fn.Decorators, &ast.Decorator{Name: d})
		}
		c.Functions = append(c.Functions, fn)
	}
	return &ast.Program{Contracts: []*ast.Contract{c}}
}

func modifierNames(c *ast.Contract) []string {
	var names []string
	for _, m := range c.Modifiers {
		names = append(names, m.Name)
	}
	return names
}

func stateNames(c *ast.Contract) []string {
	var names []string
	for _, v := range c.StateVariables() {
		names = append(names, v.Name)
	}
	return names
}

func TestTokenTransformation(t *testing.T) {
	out := Default().Apply(parse(t, tokenSource))
	c := out.Contract("Token")
	require.NotNil(t, c)

	assert.Equal(t, "true", out.Meta(ast.MetaUsesSafeMath))
	assert.Equal(t, DefaultTargetVersion, out.Meta(ast.MetaTargetVersion))
	assert.Equal(t, "", out.Meta(ast.MetaSafeMathLibraryRequired))

	// owner was authored, so only the lock is added
	assert.Equal(t, []string{"owner", "balances", "totalSupply", "_reentrancyLock_transfer"}, stateNames(c))
	assert.Equal(t, []string{"onlyOwner", "nonReentrant_transfer"}, modifierNames(c))
	assert.Equal(t, []string{"onlyOwner"}, c.Function("mint").Modifiers)
	assert.Equal(t, []string{"nonReentrant_transfer"}, c.Function("transfer").Modifiers)

	owner := c.StateVariable("owner")
	assert.Equal(t, ast.CallerIdentity, owner.InitialValue.(*ast.Identifier).Name, "authored initializer must be kept")

	assert.Len(t, c.Function("mint").Body, 3, "function bodies are never rewritten")
}

func TestOnlyOwnerSynthesizesSharedState(t *testing.T) {
	prog := decorated(map[string][]string{
		"pause":   {OnlyOwnerDecorator},
		"unpause": {OnlyOwnerDecorator},
	}, "pause", "unpause")

	out := Default().Apply(prog)
	c := out.Contracts[0]

	require.NotNil(t, c.State, "state block is created when missing")
	assert.Equal(t, []string{OwnerVariable}, stateNames(c))
	owner := c.StateVariable(OwnerVariable)
	assert.Equal(t, "address", owner.Type.Name)
	assert.Nil(t, owner.InitialValue, "owner is initialized by the constructor")

	require.Equal(t, []string{OwnerModifier}, modifierNames(c))
	body := c.Modifiers[0].Body
	require.Len(t, body, 2)
	req := body[0].(*ast.RequireStatement)
	cond := req.Condition.(*ast.BinaryExpression)
	assert.Equal(t, ast.CallerIdentity, cond.Left.(*ast.Identifier).Name)
	assert.Equal(t, "==", cond.Operator)
	assert.Equal(t, OwnerVariable, cond.Right.(*ast.Identifier).Name)
	assert.Equal(t, `"Caller is not the owner"`, req.Message.(*ast.Literal).Value)
	assert.IsType(t, &ast.PlaceholderStatement{}, body[1])

	for _, fn := range c.Functions {
		assert.Equal(t, []string{OwnerModifier}, fn.Modifiers, fn.Name)
	}
}

func TestReentrancyGuardIsolatesState(t *testing.T) {
	prog := decorated(map[string][]string{
		"withdraw": {ReentrancyGuardDecorator},
		"deposit":  {ReentrancyGuardDecorator},
	}, "withdraw", "deposit")

	out := Default().Apply(prog)
	c := out.Contracts[0]

	assert.Equal(t, []string{"_reentrancyLock_withdraw", "_reentrancyLock_deposit"}, stateNames(c))
	assert.Equal(t, []string{"nonReentrant_withdraw", "nonReentrant_deposit"}, modifierNames(c))
	assert.Equal(t, []string{"nonReentrant_withdraw"}, c.Function("withdraw").Modifiers)
	assert.Equal(t, []string{"nonReentrant_deposit"}, c.Function("deposit").Modifiers)

	lock := c.StateVariable("_reentrancyLock_withdraw")
	assert.Equal(t, "bool", lock.Type.Name)
	assert.Equal(t, "false", lock.InitialValue.(*ast.Literal).Value)

	body := c.Modifier("nonReentrant_withdraw").Body
	require.Len(t, body, 4)
	assert.IsType(t, &ast.RequireStatement{}, body[0])
	assert.Equal(t, "true", body[1].(*ast.AssignmentStatement).Value.(*ast.Literal).Value)
	assert.IsType(t, &ast.PlaceholderStatement{}, body[2])
	assert.Equal(t, "false", body[3].(*ast.AssignmentStatement).Value.(*ast.Literal).Value)
	assert.Equal(t, `"ReentrancyGuard: reentrant call"`, body[0].(*ast.RequireStatement).Message.(*ast.Literal).Value)
}

func TestIdempotence(t *testing.T) {
	r := Default()
	once := r.Apply(parse(t, tokenSource))
	twice := r.Apply(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second application changed the program (-once +twice):\n%s", diff)
	}
}

func TestDecoratorOrderDoesNotMatter(t *testing.T) {
	a := decorated(map[string][]string{
		"sweep": {OnlyOwnerDecorator, ReentrancyGuardDecorator},
	}, "sweep")
	b := decorated(map[string][]string{
		"sweep": {ReentrancyGuardDecorator, OnlyOwnerDecorator},
	}, "sweep")

	r := Default()
	outA, outB := r.Apply(a), r.Apply(b)

	ignore := cmpopts.IgnoreFields(ast.Function{}, "Decorators")
	if diff := cmp.Diff(outA, outB, ignore); diff != "" {
		t.Fatalf("decorator order changed the result (-a +b):\n%s", diff)
	}
	assert.Equal(t, []string{"onlyOwner", "nonReentrant_sweep"}, outA.Contracts[0].Function("sweep").Modifiers)
}

func TestTransformersCommute(t *testing.T) {
	prog := decorated(map[string][]string{
		"sweep":    {OnlyOwnerDecorator, ReentrancyGuardDecorator},
		"withdraw": {OnlyOwnerDecorator},
	}, "sweep", "withdraw")

	// Same transformers, registered in the opposite order.
	swapped := NewRegistry()
	require.NoError(t, swapped.Register(Entry{Name: ReentrancyGuardDecorator, Scope: FunctionScope, Transformer: ReentrancyGuard()}))
	require.NoError(t, swapped.Register(Entry{Name: OnlyOwnerDecorator, Scope: FunctionScope, Transformer: OnlyOwner()}))

	want := Default().Apply(prog).Contracts[0]
	got := swapped.Apply(prog).Contracts[0]

	assert.ElementsMatch(t, stateNames(want), stateNames(got))
	assert.ElementsMatch(t, modifierNames(want), modifierNames(got))
	assert.ElementsMatch(t, want.Function("sweep").Modifiers, got.Function("sweep").Modifiers)
	assert.Equal(t, []string{"onlyOwner"}, got.Function("withdraw").Modifiers)

	// Only declaration and attachment order follow the registry.
	assert.Equal(t, []string{"onlyOwner", "nonReentrant_sweep"}, want.Function("sweep").Modifiers)
	assert.Equal(t, []string{"nonReentrant_sweep", "onlyOwner"}, got.Function("sweep").Modifiers)
	byName := cmp.Options{
		cmpopts.SortSlices(func(a, b *ast.StateVariable) bool { return a.Name < b.Name }),
		cmpopts.SortSlices(func(a, b *ast.Modifier) bool { return a.Name < b.Name }),
		cmpopts.SortSlices(func(a, b string) bool { return a < b }),
	}
	if diff := cmp.Diff(want, got, byName); diff != "" {
		t.Fatalf("transformers do not commute beyond ordering (-default +swapped):\n%s", diff)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	prog := parse(t, tokenSource)
	before := ast.Clone(prog)

	out := Default().Apply(prog)
	require.NotSame(t, prog, out)

	if diff := cmp.Diff(before, prog); diff != "" {
		t.Fatalf("input program was mutated:\n%s\n%s", diff, spew.Sdump(prog.Metadata))
	}
}

func TestUserAuthoredNamesAreKept(t *testing.T) {
	prog := decorated(map[string][]string{"f": {OnlyOwnerDecorator}}, "f")
	c := prog.Contracts[0]
	c.State = &ast.StateDeclaration{Variables: []*ast.StateVariable{
		{Name: "owner", Type: ast.Scalar("uint256")},
	}}
	c.Modifiers = []*ast.Modifier{{Name: "onlyOwner", Body: []ast.Statement{&ast.PlaceholderStatement{}}}}

	out := Default().Apply(prog)
	oc := out.Contracts[0]
	assert.Equal(t, "uint256", oc.StateVariable("owner").Type.Name, "existing owner is detected by name only")
	require.Len(t, oc.Modifiers, 1)
	assert.Len(t, oc.Modifiers[0].Body, 1, "existing modifier is not replaced")
	assert.Equal(t, []string{"onlyOwner"}, oc.Functions[0].Modifiers)
}

func TestUnknownAndMisplacedDecoratorsAreSkipped(t *testing.T) {
	prog := decorated(map[string][]string{
		"f": {"audit", SafeMathDecorator},
	}, "f")
	prog.Contracts[0].Decorators = []*ast.Decorator{{Name: OnlyOwnerDecorator}}

	out := Default().Apply(prog)
	c := out.Contracts[0]
	assert.Empty(t, c.Modifiers)
	assert.Nil(t, c.State)
	assert.Empty(t, c.Functions[0].Modifiers)
	assert.Equal(t, "", out.Meta(ast.MetaUsesSafeMath))
}

func TestSafeMathVersions(t *testing.T) {
	prog := &ast.Program{Contracts: []*ast.Contract{{
		Name:       "Legacy",
		Decorators: []*ast.Decorator{{Name: SafeMathDecorator}},
	}}}

	out := Standard("^0.7.6").Apply(prog)
	assert.Equal(t, "true", out.Meta(ast.MetaUsesSafeMath))
	assert.Equal(t, "^0.7.6", out.Meta(ast.MetaTargetVersion))
	assert.Equal(t, "true", out.Meta(ast.MetaSafeMathLibraryRequired))

	tests := []struct {
		constraint string
		want       bool
	}{
		{"^0.8.0", false},
		{"0.8.19", false},
		{"^0.7.6", true},
		{">=0.6.0 <0.8.0", true},
		{"<0.8.0 >=0.8.0", false},
		{"~0.4.24", true},
		{"latest", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsSafeMathLibrary(tt.constraint), tt.constraint)
	}
}

func TestStageHook(t *testing.T) {
	var stages []string
	var snapshots []*ast.Program
	hook := WithStageHook(func(stage string, prog *ast.Program) {
		stages = append(stages, stage)
		snapshots = append(snapshots, prog)
	})

	out := Default().Apply(parse(t, tokenSource), hook)

	assert.Equal(t, []string{
		"Token@safe_math",
		"Token.mint@only_owner",
		"Token.transfer@reentrancy_guard",
	}, stages)
	require.Len(t, snapshots, 3)
	assert.Empty(t, snapshots[0].Contracts[0].Modifiers)
	assert.Len(t, snapshots[1].Contracts[0].Modifiers, 1)
	assert.Len(t, snapshots[2].Contracts[0].Modifiers, 2)

	snapshots[2].Contracts[0].Name = "Changed"
	assert.Equal(t, "Token", out.Contracts[0].Name, "snapshots are independent of the result")
}

func TestRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{SafeMathDecorator, OnlyOwnerDecorator, ReentrancyGuardDecorator}, r.Names())

	err := r.Register(Entry{Name: OnlyOwnerDecorator, Scope: FunctionScope, Transformer: OnlyOwner()})
	assert.True(t, errors.Is(err, ErrDuplicateDecorator))
	assert.Error(t, r.Register(Entry{Name: "", Transformer: OnlyOwner()}))
	assert.Error(t, r.Register(Entry{Name: "pausable"}))

	called := 0
	require.NoError(t, r.Register(Entry{
		Name:        "pausable",
		Scope:       ContractScope,
		Transformer: TransformerFunc(func(Site) { called++ }),
	}))
	assert.Equal(t, "pausable", r.Names()[3])

	e, ok := r.Lookup(OnlyOwnerDecorator)
	require.True(t, ok)
	assert.Equal(t, FunctionScope, e.Scope)
	assert.Equal(t, "function", e.Scope.String())

	trimmed := r.Without(OnlyOwnerDecorator, "missing")
	assert.Equal(t, []string{SafeMathDecorator, ReentrancyGuardDecorator, "pausable"}, trimmed.Names())
	assert.Len(t, r.Names(), 4, "Without must not modify the receiver")

	prog := &ast.Program{Contracts: []*ast.Contract{{Name: "P", Decorators: []*ast.Decorator{{Name: "pausable"}}}}}
	trimmed.Apply(prog)
	assert.Equal(t, 1, called)
}

func TestApplyNil(t *testing.T) {
	assert.Nil(t, Default().Apply(nil))
}
