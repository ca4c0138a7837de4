// Package compiler drives the Smartra pipeline: parse, lint, transform,
// optionally check, and emit through a backend.
package compiler

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/backend"
	"github.com/lhaig/smartra/internal/checker"
	"github.com/lhaig/smartra/internal/diagnostic"
	"github.com/lhaig/smartra/internal/linter"
	"github.com/lhaig/smartra/internal/parser"
	"github.com/lhaig/smartra/internal/transform"
)

// ErrStrictCheck is returned in Result.Err when strict mode rejected the
// transformed program.
var ErrStrictCheck = errors.New("structural check failed")

// Result holds the output of a compilation. Results may be shared through
// the cache and must not be modified.
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Program     *ast.Program // as parsed
	Transformed *ast.Program // after decorator transformation
	Output      string       // backend output
	Extension   string       // file extension of Output
	Err         error        // *parser.Error or ErrStrictCheck
}

// Failed reports whether the compilation produced no output.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Compiler compiles Smartra sources with a fixed configuration. It is
// safe for concurrent use.
type Compiler struct {
	cfg      Config
	registry *transform.Registry
	backend  backend.Backend
	cache    *Cache
	hook     transform.StageHook
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithStageHook observes every transformation stage. Results produced with
// a hook bypass the cache so the hook always fires.
func WithStageHook(hook transform.StageHook) Option {
	return func(c *Compiler) { c.hook = hook }
}

// New creates a compiler for cfg.
func New(cfg Config, opts ...Option) (*Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	be, err := backend.Lookup(cfg.Emit)
	if err != nil {
		return nil, err
	}

	reg := transform.Standard(cfg.TargetVersion)
	for _, name := range cfg.Disabled {
		if _, ok := reg.Lookup(name); !ok {
			log.Warn("Disabling unknown decorator", "name", name)
		}
	}
	reg = reg.Without(cfg.Disabled...)

	c := &Compiler{
		cfg:      cfg,
		registry: reg,
		backend:  be,
		cache:    NewCache(cfg.CacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the compiler configuration.
func (c *Compiler) Config() Config {
	return c.cfg
}

// Registry returns the decorator registry in use.
func (c *Compiler) Registry() *transform.Registry {
	return c.registry
}

// Compile runs the full pipeline: parse -> lint -> transform -> check -> emit.
// Front-end failures are reported in Result.Err and Result.Diagnostics;
// the caller decides how to fall back.
func (c *Compiler) Compile(source string) *Result {
	key := Fingerprint(source, c.cfg.key())
	if c.hook == nil {
		if res, ok := c.cache.Get(key); ok {
			log.Debug("Using cached compilation", "hash", key)
			return res
		}
	}

	res := c.compile(source)
	if c.hook == nil {
		c.cache.Add(key, res)
	}
	return res
}

func (c *Compiler) compile(source string) *Result {
	res := &Result{Diagnostics: diagnostic.New(), Extension: c.backend.Extension()}

	// Parse
	p := parser.New(source)
	prog := p.Parse()
	res.Program = prog
	res.Diagnostics.Merge(p.Diagnostics(), "")
	if err := p.Err(); err != nil {
		res.Err = err
		return res
	}

	if c.cfg.Lint {
		res.Diagnostics.Merge(linter.Lint(prog, c.registry), "")
	}

	// Transform
	var opts []transform.Option
	if c.hook != nil {
		opts = append(opts, transform.WithStageHook(c.hook))
	}
	transformed := c.registry.Apply(prog, opts...)
	if transformed.Meta(ast.MetaTargetVersion) == "" {
		transformed.SetMeta(ast.MetaTargetVersion, c.cfg.TargetVersion)
	}
	res.Transformed = transformed

	if c.cfg.Strict {
		diags := checker.Check(transformed)
		res.Diagnostics.Merge(diags, "")
		if diags.HasErrors() {
			res.Err = ErrStrictCheck
			return res
		}
	}

	// Emit
	input := prog
	if c.backend.Transformed() {
		input = transformed
	}
	res.Output = c.backend.Generate(input)
	log.Debug("Compiled source", "contracts", len(prog.Contracts), "emit", c.backend.Name(), "bytes", len(res.Output))
	return res
}

// Check runs parse + transform + structural check only (no output),
// regardless of the Strict setting.
func (c *Compiler) Check(source string) *diagnostic.Diagnostics {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}
	diags := diagnostic.New()
	diags.Merge(p.Diagnostics(), "")
	diags.Merge(checker.Check(c.registry.Apply(prog)), "")
	return diags
}

// Lint runs parse + lint only.
func (c *Compiler) Lint(source string) *diagnostic.Diagnostics {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}
	diags := diagnostic.New()
	diags.Merge(p.Diagnostics(), "")
	diags.Merge(linter.Lint(prog, c.registry), "")
	return diags
}

// CheckFile reads one file and runs Check on it. Diagnostics are tagged
// with the path.
func (c *Compiler) CheckFile(path string) (*diagnostic.Diagnostics, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	diags := diagnostic.New()
	diags.Merge(c.Check(string(source)), path)
	diags.Sort()
	return diags, nil
}

// CompileFile reads and compiles one file. Diagnostics are tagged with
// the path. The returned error covers I/O only; compilation failures are
// reported in the Result.
func (c *Compiler) CompileFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	res := c.Compile(string(source))

	// Copy before tagging so cached results stay untouched.
	tagged := *res
	tagged.Diagnostics = diagnostic.New()
	tagged.Diagnostics.Merge(res.Diagnostics, path)
	tagged.Diagnostics.Sort()
	return &tagged, nil
}
