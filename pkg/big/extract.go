package big

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extract writes the selected files to dir, creating parent directories as
// needed. With no names given, every file is extracted. The '\' separators in
// entry names map to the host path separator.
func (c *core) Extract(dir string, names ...string) error {
	if len(names) == 0 {
		names = c.List()
	}

	for _, name := range names {
		content, err := c.ReadFile(name)
		if err != nil {
			return err
		}

		rel := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
		path := filepath.Join(dir, rel)

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("extract %q: %w", name, err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("extract %q: %w", name, err)
		}
	}
	return nil
}

// addTree walks dir and records every file as a pending add, named by its
// path relative to dir with separators normalized to '\'.
func addTree(c *core, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return c.AddFile(name, content)
	})
}
