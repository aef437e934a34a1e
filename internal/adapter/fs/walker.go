package fs

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker finds files under a root by glob pattern.
type Walker struct {
	pattern string
}

// NewWalker creates a walker for one doublestar pattern, e.g. "*.blk" or
// "**/*.txt".
func NewWalker(pattern string) *Walker {
	return &Walker{pattern: pattern}
}

// Walk returns the matching file paths under root, sorted for stable
// processing order.
func (w *Walker) Walk(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FindBlocks lists the spill blocks inside a blocks directory. Any *.blk
// file found there is merge input.
func FindBlocks(dir string) ([]string, error) {
	return NewWalker("*.blk").Walk(dir)
}

// FindTextFiles lists the corpus .txt files under root, recursively.
func FindTextFiles(root string) ([]string, error) {
	return NewWalker("**/*.txt").Walk(root)
}
