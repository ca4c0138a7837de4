// smartrac is the command-line front end of the Smartra compiler.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/lhaig/smartra/internal/compiler"
)

const clientIdentifier = "smartrac"

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	emitFlag = cli.StringFlag{
		Name:  "emit",
		Usage: "Output format: solidity, smartra, ast or dump",
	}
	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "Output file or directory, - for stdout",
	}
	strictFlag = cli.BoolFlag{
		Name:  "strict",
		Usage: "Validate the transformed program and fail on structural errors",
	}
	writeFlag = cli.BoolFlag{
		Name:  "write, w",
		Usage: "Write the result to the source file instead of stdout",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "compile decorator-annotated Smartra contracts to Solidity"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{configFileFlag, verbosityFlag}
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx.GlobalInt(verbosityFlag.Name))
		return nil
	}
	app.Commands = []cli.Command{
		buildCommand,
		checkCommand,
		lintCommand,
		fmtCommand,
		decoratorsCommand,
		dumpConfigCommand,
		watchCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging installs a terminal log handler on stderr, coloured when
// stderr is a terminal.
func setupLogging(verbosity int) {
	usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(verbosity), log.StreamHandler(output, log.TerminalFormat(usecolor))))
}

// loadConfig reads the --config file and applies command flags on top.
func loadConfig(ctx *cli.Context) (compiler.Config, error) {
	cfg, err := compiler.LoadConfig(ctx.GlobalString(configFileFlag.Name))
	if err != nil {
		return cfg, err
	}
	if ctx.IsSet(emitFlag.Name) {
		cfg.Emit = ctx.String(emitFlag.Name)
	}
	if ctx.Bool(strictFlag.Name) {
		cfg.Strict = true
	}
	return cfg, cfg.Validate()
}

func makeCompiler(ctx *cli.Context) (*compiler.Compiler, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return compiler.New(cfg)
}
