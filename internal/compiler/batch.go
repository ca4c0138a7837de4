package compiler

import (
	"context"
	"runtime"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
)

// FileResult pairs a source path with its compilation result.
type FileResult struct {
	Path string
	*Result
}

// CompileFiles compiles independent files concurrently, at most GOMAXPROCS
// at a time. Results keep the order of paths. The returned error is the
// first I/O failure or ctx's error; compilation failures are reported per
// file.
func (c *Compiler) CompileFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := c.CompileFile(path)
			if err != nil {
				return err
			}
			results[i] = FileResult{Path: path, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	log.Info("Compiled sources", "files", len(paths), "failed", failed)
	return results, nil
}
