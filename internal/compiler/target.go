package compiler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

// OutputPath returns where output for the source file src is written.
// An empty out places it next to src, an existing directory receives
// <base><ext>, anything else is used as given.
func OutputPath(src, out, ext string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ext
	if out == "" {
		return filepath.Join(filepath.Dir(src), base)
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, base)
	}
	return out
}

// WriteOutput writes the output of a successful result to path, creating
// parent directories as needed.
func WriteOutput(res *Result, path string) error {
	if res.Failed() {
		return errors.Wrap(res.Err, "nothing to write")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create output dir")
		}
	}
	if err := os.WriteFile(path, []byte(res.Output), 0644); err != nil {
		return errors.Wrap(err, "write output file")
	}
	log.Info("Wrote output", "path", path, "bytes", len(res.Output))
	return nil
}

// EmitToTarget compiles the file at src and writes the result according
// to OutputPath. It returns the written path.
func (c *Compiler) EmitToTarget(src, out string) (string, error) {
	res, err := c.CompileFile(src)
	if err != nil {
		return "", err
	}
	if res.Failed() {
		return "", errors.Errorf("compilation errors:\n%s", res.Diagnostics.Format(src))
	}
	path := OutputPath(src, out, res.Extension)
	return path, WriteOutput(res, path)
}
