package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/warp/statement-ledger/ledger"
)

// PlainText reads a file as-is. Used for statements already converted to text.
type PlainText struct{}

func (PlainText) ExtractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", ledger.ErrNoText
	}
	return string(data), nil
}

// FindFiles walks root recursively and returns every regular file whose
// extension matches ext, ignoring case. Paths are sorted.
func FindFiles(root, ext string) ([]string, error) {
	ext = strings.ToLower(ext)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.ToLower(filepath.Ext(path)) == ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
