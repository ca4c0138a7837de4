package compiler

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// SourceExt is the file extension of Smartra sources.
const SourceExt = ".sl"

// Discover expands paths into the Smartra source files to compile.
// Directories are searched breadth-first for *.sl files, visiting entries
// in lexical order; files must carry the .sl extension. Each file is
// returned once, in discovery order, as an absolute path.
func Discover(paths ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrap(err, "resolve source path")
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Errorf("source not found: %s", p)
		}
		if !fi.IsDir() {
			if filepath.Ext(abs) != SourceExt {
				return nil, errors.Errorf("source file must have %s extension: %s", SourceExt, p)
			}
			add(abs)
			continue
		}

		queue := []string{abs}
		for len(queue) > 0 {
			dir := queue[0]
			queue = queue[1:]

			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil, errors.Wrapf(err, "read directory %s", dir)
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
			for _, e := range entries {
				path := filepath.Join(dir, e.Name())
				switch {
				case e.IsDir():
					queue = append(queue, path)
				case filepath.Ext(path) == SourceExt:
					add(path)
				}
			}
		}
	}
	return files, nil
}
