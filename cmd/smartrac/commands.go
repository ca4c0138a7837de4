package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/lhaig/smartra/internal/compiler"
	"github.com/lhaig/smartra/internal/formatter"
	"github.com/lhaig/smartra/internal/parser"
)

var (
	buildCommand = cli.Command{
		Action:    build,
		Name:      "build",
		Usage:     "Compile Smartra sources",
		ArgsUsage: "<file.sl|dir>...",
		Flags:     []cli.Flag{emitFlag, outputFlag, strictFlag},
		Description: `
Compiles every given file, and every .sl file below given directories.
Output is written next to each source unless --output names a file
(single source), a directory, or - for stdout.`,
	}
	checkCommand = cli.Command{
		Action:    check,
		Name:      "check",
		Usage:     "Parse, transform and validate without writing output",
		ArgsUsage: "<file.sl>",
	}
	lintCommand = cli.Command{
		Action:    lint,
		Name:      "lint",
		Usage:     "Run lint checks for style and decorator usage",
		ArgsUsage: "<file.sl>",
	}
	fmtCommand = cli.Command{
		Action:    format,
		Name:      "fmt",
		Usage:     "Print a source file in canonical form",
		ArgsUsage: "<file.sl>",
		Flags:     []cli.Flag{writeFlag},
	}
	decoratorsCommand = cli.Command{
		Action: decorators,
		Name:   "decorators",
		Usage:  "List the available decorators",
	}
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[file]",
		Description: `The dumpconfig command shows the effective configuration as TOML.`,
	}
)

func sourceArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", errors.New("expected exactly one input file")
	}
	return ctx.Args().First(), nil
}

// build is the build command.
func build(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("no input files specified")
	}
	c, err := makeCompiler(ctx)
	if err != nil {
		return err
	}
	files, err := compiler.Discover(ctx.Args()...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no .sl files found")
	}

	out := ctx.String(outputFlag.Name)
	if len(files) > 1 && out != "" && out != "-" {
		if err := os.MkdirAll(out, 0755); err != nil {
			return errors.Wrap(err, "create output dir")
		}
	}

	results, err := c.CompileFiles(context.Background(), files)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		printDiagnostics(os.Stderr, r.Diagnostics, r.Path)
		if r.Failed() {
			failed++
			continue
		}
		if out == "-" {
			fmt.Print(r.Output)
			continue
		}
		if err := compiler.WriteOutput(r.Result, compiler.OutputPath(r.Path, out, r.Extension)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d file(s) failed to compile", failed, len(results))
	}
	return nil
}

// check is the check command.
func check(ctx *cli.Context) error {
	path, err := sourceArg(ctx)
	if err != nil {
		return err
	}
	c, err := makeCompiler(ctx)
	if err != nil {
		return err
	}
	diags, err := c.CheckFile(path)
	if err != nil {
		return err
	}
	printDiagnostics(os.Stderr, diags, path)
	if diags.HasErrors() {
		return errors.Errorf("%s: %d error(s) found", path, diags.ErrorCount())
	}
	fmt.Println("No errors found.")
	return nil
}

// lint is the lint command.
func lint(ctx *cli.Context) error {
	path, err := sourceArg(ctx)
	if err != nil {
		return err
	}
	c, err := makeCompiler(ctx)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read source")
	}

	diags := c.Lint(string(source))
	if diags.HasErrors() {
		printDiagnostics(os.Stderr, diags, path)
		return errors.Errorf("%s has syntax errors", path)
	}
	if diags.Count() == 0 {
		fmt.Println("No lint warnings.")
		return nil
	}
	printDiagnostics(os.Stdout, diags, path)
	fmt.Printf("%d warning(s) found.\n", diags.WarningCount())
	return nil
}

// format is the fmt command.
func format(ctx *cli.Context) error {
	path, err := sourceArg(ctx)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read source")
	}
	prog, err := parser.ParseSource(string(source))
	if err != nil {
		return errors.Wrap(err, path)
	}
	formatted := formatter.Format(prog)

	if !ctx.Bool("write") {
		fmt.Print(formatted)
		return nil
	}
	if formatted == string(source) {
		return nil
	}
	if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
		return errors.Wrap(err, "write formatted source")
	}
	log.Info("Formatted source", "path", path)
	return nil
}

// decorators is the decorators command.
func decorators(ctx *cli.Context) error {
	c, err := makeCompiler(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Decorator", "Applies to", "Description"})
	for _, e := range c.Registry().Entries() {
		table.Append([]string{"@" + e.Name, e.Scope.String(), e.Description})
	}
	table.Render()
	if disabled := c.Config().Disabled; len(disabled) > 0 {
		fmt.Printf("Disabled: %s\n", strings.Join(disabled, ", "))
	}
	return nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	out, err := cfg.Marshal()
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
