package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "employees.json")
	writeFile(t, path)

	files, err := NewWalker(nil).Resolve(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != path {
		t.Errorf("expected [%s], got %+v", path, files)
	}
}

func TestResolve_MissingFile(t *testing.T) {
	_, err := NewWalker(nil).Resolve(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolve_Directory(t *testing.T) {
	_, err := NewWalker(nil).Resolve(t.TempDir())
	if err == nil {
		t.Error("expected error for a directory source")
	}
}

func TestResolve_GlobSortedWithExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "team.json"))
	writeFile(t, filepath.Join(dir, "a", "team.json"))
	writeFile(t, filepath.Join(dir, "a", "draft", "team.json"))
	writeFile(t, filepath.Join(dir, "a", "notes.txt"))

	w := NewWalker([]string{"**/draft/**"})
	files, err := w.Resolve(filepath.Join(dir, "**", "*.json"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "a", "team.json"),
		filepath.Join(dir, "b", "team.json"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(files), files)
	}
	for i := range want {
		if files[i].Path != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], files[i].Path)
		}
	}
}

func TestResolve_GlobNoMatches(t *testing.T) {
	files, err := NewWalker(nil).Resolve(filepath.Join(t.TempDir(), "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}
