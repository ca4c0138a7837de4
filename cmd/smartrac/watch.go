package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/rjeczalik/notify"
	"gopkg.in/urfave/cli.v1"

	"github.com/lhaig/smartra/internal/compiler"
)

var watchCommand = cli.Command{
	Action:    watch,
	Name:      "watch",
	Usage:     "Recompile a source file whenever it changes",
	ArgsUsage: "<file.sl>",
	Flags:     []cli.Flag{emitFlag, outputFlag, strictFlag},
}

// watch is the watch command.
func watch(ctx *cli.Context) error {
	path, err := sourceArg(ctx)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve source path")
	}
	c, err := makeCompiler(ctx)
	if err != nil {
		return err
	}
	out := ctx.String(outputFlag.Name)

	// Editors often replace files instead of writing them, so the parent
	// directory is watched.
	events := make(chan notify.EventInfo, 16)
	if err := notify.Watch(filepath.Dir(abs), events, notify.Write, notify.Create, notify.Rename); err != nil {
		return errors.Wrap(err, "watch source")
	}
	defer notify.Stop(events)

	wctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rebuild := func() {
		if written, err := rebuildTo(c, abs, out, os.Stdout); err != nil {
			log.Error("Rebuild failed", "path", path, "err", err)
		} else {
			log.Info("Rebuilt", "path", path, "output", written)
		}
	}
	log.Info("Watching for changes", "path", abs)
	rebuild()
	return watchLoop(wctx, events, abs, rebuild)
}

// rebuildTo compiles src and writes the output as build would: out "-"
// prints to w, anything else goes through EmitToTarget. It returns where
// the output went.
func rebuildTo(c *compiler.Compiler, src, out string, w io.Writer) (string, error) {
	if out != "-" {
		return c.EmitToTarget(src, out)
	}
	res, err := c.CompileFile(src)
	if err != nil {
		return "", err
	}
	printDiagnostics(os.Stderr, res.Diagnostics, src)
	if res.Failed() {
		return "", errors.Wrap(res.Err, src)
	}
	if _, err := io.WriteString(w, res.Output); err != nil {
		return "", errors.Wrap(err, "write output")
	}
	return "stdout", nil
}

// watchLoop calls rebuild for every event on file until ctx is done.
func watchLoop(ctx context.Context, events <-chan notify.EventInfo, file string, rebuild func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ei, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ei.Path()) != file {
				continue
			}
			log.Debug("Source changed", "path", file, "event", ei.Event())
			rebuild()
		}
	}
}
