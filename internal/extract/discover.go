package extract

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file extensions DiscoverFiles considers
// ingestible text, the plain-text/markdown surface this offline extractor
// understands (PDF/DOCX parsing is out of scope, see DESIGN.md).
var DefaultExtensions = []string{".txt", ".md", ".markdown"}

// DiscoverFiles walks root and returns every regular file whose extension
// (case-insensitive) is in extensions, sorted by path for deterministic
// seeding order across runs.
func DiscoverFiles(root string, extensions []string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
