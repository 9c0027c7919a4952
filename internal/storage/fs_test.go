package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("Time (120)  \n")
	if err := s.Write("songlist/list.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("songlist/list.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotExist(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("nope.md")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("song_data/lyrics/Time.txt", []byte("ticking away"))

	ok, err := s.Exists("song_data/lyrics/Time.txt")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}
	ok, err = s.Exists("song_data/lyrics/Deal.txt")
	if err != nil || ok {
		t.Errorf("Exists missing = %v, %v; want false", ok, err)
	}
	ok, _ = s.Exists("song_data/lyrics")
	if ok {
		t.Error("a directory should not count as an existing file")
	}
}

func TestDeleteRemovesEmptyParent(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("setlists/Kings Setlist (030725)/Kings Setlist (030725).md", []byte("x"))
	if err := s.Delete("setlists/Kings Setlist (030725)/Kings Setlist (030725).md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "setlists", "Kings Setlist (030725)")); !os.IsNotExist(err) {
		t.Errorf("venue dir should be gone, stat err = %v", err)
	}
}

func TestMove(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("setlists/a/old.md", []byte("data"))
	if err := s.Move("setlists/a/old.md", "setlists/b/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("setlists/b/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("setlists/a/old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("setlists/x/a.md", []byte("a"))
	_ = s.Write("setlists/y/b.md", []byte("b"))
	_ = s.Write("setlists/y/readme.txt", []byte("not md"))

	items, err := s.List("setlists", ".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "setlists/x/a.md" || items[0].Checksum == "" {
		t.Errorf("items[0] = %+v", items[0])
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempRoot(t)
	items, err := s.List("setlists", ".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("list.md", []byte("original"))
	if err := s.Write("list.md", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("list.md")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".bandhub-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "bandhub-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
