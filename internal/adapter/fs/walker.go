package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker resolves a data source location into concrete record files.
// The location may be a single file or a doublestar pattern such as
// "data/**/*.json".
type Walker struct {
	excludes []string
}

func NewWalker(excludes []string) *Walker {
	return &Walker{excludes: excludes}
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// Resolve returns the files matching location in lexical path order.
// A plain path that does not exist is an error; a pattern that matches
// nothing returns an empty slice.
func (w *Walker) Resolve(location string) ([]FileInfo, error) {
	if !doublestar.ValidatePathPattern(location) {
		return nil, fmt.Errorf("invalid data source pattern: %s", location)
	}

	if !hasMeta(location) {
		info, err := os.Stat(location)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("data source is a directory: %s", location)
		}
		return []FileInfo{toFileInfo(location, info)}, nil
	}

	matches, err := doublestar.FilepathGlob(location, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	// Excludes are matched relative to the non-pattern prefix.
	base, _ := doublestar.SplitPattern(filepath.ToSlash(location))

	files := make([]FileInfo, 0, len(matches))
	for _, path := range matches {
		rel, err := filepath.Rel(filepath.FromSlash(base), path)
		if err != nil {
			rel = path
		}
		if w.shouldExclude(filepath.ToSlash(rel)) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		files = append(files, toFileInfo(path, info))
	}
	return files, nil
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func hasMeta(path string) bool {
	for _, r := range path {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		ModTime: info.ModTime().Unix(),
		Size:    info.Size(),
	}
}

func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
