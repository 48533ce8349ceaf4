package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryFileSystemReadWrite(t *testing.T) {
	fs := NewMemoryFileSystem()

	if fs.Exists("a.txt") {
		t.Error("empty filesystem reports file as existing")
	}
	if _, err := fs.ReadFile("a.txt"); err == nil {
		t.Error("expected error reading missing file")
	}

	if err := fs.WriteFile("a.txt", []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := fs.ReadFile("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("ReadFile = %q, want %q", got, "data")
	}
	if !fs.Exists("a.txt") {
		t.Error("written file reported as missing")
	}
}

func TestMemoryFileSystemTouchSetsModTime(t *testing.T) {
	fs := NewMemoryFileSystem()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	fs.Touch("src.cpp", base)
	fs.Touch("artifact", base.Add(time.Hour))

	srcInfo, err := fs.Stat("src.cpp")
	if err != nil {
		t.Fatal(err)
	}
	artInfo, err := fs.Stat("artifact")
	if err != nil {
		t.Fatal(err)
	}
	if !artInfo.ModTime().After(srcInfo.ModTime()) {
		t.Errorf("artifact mtime %v not after source mtime %v", artInfo.ModTime(), srcInfo.ModTime())
	}

	// Touch on an existing file only moves its time.
	fs.WriteFile("src.cpp", []byte("x"), 0644)
	fs.Touch("src.cpp", base.Add(2*time.Hour))
	srcInfo, _ = fs.Stat("src.cpp")
	if got := srcInfo.ModTime(); !got.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("ModTime = %v after Touch, want %v", got, base.Add(2*time.Hour))
	}
	if data, _ := fs.ReadFile("src.cpp"); string(data) != "x" {
		t.Error("Touch clobbered file contents")
	}
}

func TestMemoryFileSystemStatMissing(t *testing.T) {
	fs := NewMemoryFileSystem()
	if _, err := fs.Stat("nope"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOSFileSystem(t *testing.T) {
	fs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "f.txt")

	if fs.Exists(path) {
		t.Error("Exists true before creation")
	}
	if err := fs.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if !fs.Exists(path) {
		t.Error("Exists false after creation")
	}
	data, err := fs.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
	info, err := fs.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.ModTime().IsZero() {
		t.Error("Stat returned zero mod time")
	}
	if info.Mode() != os.FileMode(0644) {
		t.Logf("mode = %v (umask dependent, informational)", info.Mode())
	}
}
