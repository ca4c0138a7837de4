package compiler

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/parser"
)

func newCompiler(t *testing.T, mutate func(*Config)) *Compiler {
	t.Helper()
	cfg := Defaults
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func readTestdata(t *testing.T) string {
	t.Helper()
	res, err := newCompiler(t, func(c *Config) { c.Emit = "smartra" }).CompileFile("testdata/token.sl")
	require.NoError(t, err)
	require.False(t, res.Failed(), res.Diagnostics.Format("token.sl"))
	return res.Output
}

func TestCompileValidProgram(t *testing.T) {
	res, err := newCompiler(t, nil).CompileFile("testdata/token.sl")
	require.NoError(t, err)
	require.False(t, res.Failed(), res.Diagnostics.Format("token.sl"))

	assert.Equal(t, ".sol", res.Extension)
	assert.Equal(t, 0, res.Diagnostics.Count(), res.Diagnostics.Format("token.sl"))
	for _, want := range []string{
		"pragma solidity ^0.8.0;",
		"    modifier onlyOwner() {",
		"    modifier nonReentrant_mint() {",
		"    modifier nonReentrant_transfer() {",
		"    constructor() {",
		"    function mint(address to, uint256 amount) public onlyOwner nonReentrant_mint {",
		"    function transfer(address to, uint256 amount) public nonReentrant_transfer returns (bool) {",
	} {
		assert.Contains(t, res.Output, want+"\n")
	}
	assert.Equal(t, "true", res.Transformed.Meta(ast.MetaUsesSafeMath))
	assert.Empty(t, res.Program.Contracts[0].Modifiers, "parsed program must stay untransformed")
}

func TestCompileParseError(t *testing.T) {
	res := newCompiler(t, nil).Compile("contract Token:\n    state:\n        x uint256\n")
	require.True(t, res.Failed())

	var perr *parser.Error
	require.ErrorAs(t, res.Err, &perr)
	assert.Equal(t, 3, perr.Line)
	assert.Equal(t, "x uint256", perr.Fragment)
	assert.True(t, res.Diagnostics.HasErrors())
	assert.Empty(t, res.Output)
}

func TestCompileStrictMode(t *testing.T) {
	source := `contract C:
    state:
        total: uint256
    function total():
        return
`
	lenient := newCompiler(t, nil).Compile(source)
	require.False(t, lenient.Failed())
	assert.NotEmpty(t, lenient.Output)

	strict := newCompiler(t, func(c *Config) { c.Strict = true }).Compile(source)
	require.True(t, strict.Failed())
	assert.ErrorIs(t, strict.Err, ErrStrictCheck)
	assert.Empty(t, strict.Output)
	assert.Contains(t, strict.Diagnostics.Format("c.sl"), "'total' already declared as state variable")
}

func TestCompileLintToggle(t *testing.T) {
	source := "contract c:\n    function f():\n        return\n"

	withLint := newCompiler(t, nil).Compile(source)
	assert.True(t, withLint.Diagnostics.WarningCount() > 0)

	withoutLint := newCompiler(t, func(c *Config) { c.Lint = false }).Compile(source)
	assert.Equal(t, 0, withoutLint.Diagnostics.WarningCount())
}

func TestCompileTargetVersion(t *testing.T) {
	c := newCompiler(t, func(c *Config) { c.TargetVersion = "^0.7.6" })

	res := c.Compile("@safe_math\ncontract A:\n    state:\n        x: uint256\n")
	assert.True(t, strings.HasPrefix(res.Output, "// SPDX-License-Identifier: MIT\npragma solidity ^0.7.6;\n"))
	assert.Equal(t, "true", res.Transformed.Meta(ast.MetaSafeMathLibraryRequired))

	// Contracts without @safe_math still honour the configured version.
	res = c.Compile("contract B:\n    state:\n        x: uint256\n")
	assert.Contains(t, res.Output, "pragma solidity ^0.7.6;\n")
}

func TestCompileDisabledDecorator(t *testing.T) {
	c := newCompiler(t, func(c *Config) { c.Disabled = []string{"reentrancy_guard"} })
	assert.Equal(t, []string{"safe_math", "only_owner"}, c.Registry().Names())

	res := c.Compile("contract A:\n    @reentrancy_guard\n    function f(x: uint256):\n        return x\n")
	require.False(t, res.Failed())
	assert.NotContains(t, res.Output, "nonReentrant_f")
}

func TestCompileOtherBackends(t *testing.T) {
	tests := []struct {
		emit string
		ext  string
		want string
	}{
		{"smartra", ".sl", "    @only_owner\n    @reentrancy_guard\n    function mint(to: address, amount: uint256):\n"},
		{"ast", ".ast", "Contract: Token"},
		{"dump", ".dump", "_reentrancyLock_mint"},
	}
	for _, tt := range tests {
		t.Run(tt.emit, func(t *testing.T) {
			res, err := newCompiler(t, func(c *Config) { c.Emit = tt.emit }).CompileFile("testdata/token.sl")
			require.NoError(t, err)
			assert.Equal(t, tt.ext, res.Extension)
			assert.Contains(t, res.Output, tt.want)
		})
	}
}

func TestFormattedTestdataCompilesIdentically(t *testing.T) {
	formatted := readTestdata(t)
	c := newCompiler(t, func(c *Config) { c.CacheSize = 0 })

	orig, err := c.CompileFile("testdata/token.sl")
	require.NoError(t, err)
	again := c.Compile(formatted)
	assert.Equal(t, orig.Output, again.Output)
}

func TestCheckAndLint(t *testing.T) {
	c := newCompiler(t, nil)

	diags := c.Check("contract C:\n    function f(a: uint256, a: uint256):\n        return\n")
	assert.True(t, diags.HasErrors())

	diags = c.Lint("contract C:\n    event Unused(x: uint256)\n")
	assert.False(t, diags.HasErrors())
	assert.Contains(t, diags.Format("c.sl"), "event 'Unused' is never emitted")

	diags = c.Check("contract C:\n    function (\n")
	assert.True(t, diags.HasErrors())
}

func TestCheckFileRunsCheckerWithoutStrict(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeSourceFile(t, tmpDir, "dup.sl", "contract C:\n    state:\n        f: uint256\n    function f():\n        return\n")

	c := newCompiler(t, nil)
	require.False(t, c.Config().Strict)
	diags, err := c.CheckFile(path)
	require.NoError(t, err)
	require.True(t, diags.HasErrors())
	for _, d := range diags.All() {
		assert.Equal(t, path, d.File)
	}

	_, err = c.CheckFile(filepath.Join(tmpDir, "missing.sl"))
	assert.Error(t, err)
}

func TestCompileUsesCache(t *testing.T) {
	c := newCompiler(t, nil)
	first := c.Compile(minimalSource)
	second := c.Compile(minimalSource)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.cache.Len())

	var stages []string
	hooked, err := New(Defaults, WithStageHook(func(stage string, _ *ast.Program) {
		stages = append(stages, stage)
	}))
	require.NoError(t, err)
	source := "contract A:\n    @only_owner\n    function f():\n        return\n"
	hooked.Compile(source)
	hooked.Compile(source)
	assert.Equal(t, []string{"A.f@only_owner", "A.f@only_owner"}, stages)
}

func TestCompileFileTagsDiagnostics(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeSourceFile(t, tmpDir, "bad.sl", "contract c:\n    function f():\n        return\n")

	c := newCompiler(t, nil)
	res, err := c.CompileFile(path)
	require.NoError(t, err)
	require.NotZero(t, res.Diagnostics.Count())
	for _, d := range res.Diagnostics.All() {
		assert.Equal(t, path, d.File)
	}

	// The cached result keeps untagged diagnostics.
	cached := c.Compile("contract c:\n    function f():\n        return\n")
	for _, d := range cached.Diagnostics.All() {
		assert.Empty(t, d.File)
	}

	_, err = c.CompileFile(tmpDir + "/missing.sl")
	assert.Error(t, err)
}
