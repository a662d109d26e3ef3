package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/jotter/internal/checksum"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	v, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return v
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\ntitle: Hello\n---\n\nWorld\n")
	if err := s.Write("idea.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("idea.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("work/deep/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("work/deep/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "failed/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("failed/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not md"))
	_ = os.WriteFile(filepath.Join(s.Root(), tmpPrefix+"x.md"), []byte("partial"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "a.md" || items[1].Path != "sub/b.md" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	if items[0].Checksum != checksum.Sum([]byte("a")) {
		t.Errorf("checksum = %s", items[0].Checksum)
	}

	sub, err := s.List("sub")
	if err != nil {
		t.Fatalf("List(sub): %v", err)
	}
	if len(sub) != 1 {
		t.Errorf("sub len = %d, want 1", len(sub))
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

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

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export", "2026")
	v, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	info, err := os.Stat(v.Root())
	if err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "jotter-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestRel(t *testing.T) {
	s := tempVault(t)
	rel, err := s.Rel(filepath.Join(s.Root(), "a", "b.md"))
	if err != nil || rel != "a/b.md" {
		t.Errorf("Rel = %q, %v", rel, err)
	}
	if _, err := s.Rel(filepath.Dir(s.Root())); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestIsMarkdown(t *testing.T) {
	cases := map[string]bool{
		"a.md":              true,
		"dir/b.md":          true,
		"c.txt":             false,
		tmpPrefix + "12.md": false,
	}
	for name, want := range cases {
		if got := IsMarkdown(name); got != want {
			t.Errorf("IsMarkdown(%q) = %v, want %v", name, got, want)
		}
	}
}
