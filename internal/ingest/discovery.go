package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/construdata/precobase/internal/spreadsheet"
)

// Discover walks root recursively and returns every supported file, sorted
// so batch runs process files in a stable order.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if spreadsheet.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
