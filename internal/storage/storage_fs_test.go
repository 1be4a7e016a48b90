package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStorage(dir)

	if err := s.WriteFile(context.Background(), "guides/install/index.html", []byte("<p>hi</p>")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "guides", "install", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<p>hi</p>" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteFileRejectsEscapes(t *testing.T) {
	s := NewFSStorage(t.TempDir())
	for _, p := range []string{"../outside.html", "a/../../b", ""} {
		if err := s.WriteFile(context.Background(), p, []byte("x")); err == nil {
			t.Errorf("expected error for %q", p)
		}
	}
}

func TestWriteFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewFSStorage(t.TempDir()).WriteFile(ctx, "a.html", nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWriteFileAbsolute_OverwritesDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nonexistent")
	dest := filepath.Join(dir, "output.html")

	if err := os.Symlink(target, dest); err != nil {
		t.Fatal(err)
	}

	s := &FSStorage{}
	if err := s.writeFileAbsolute(dest, []byte("hello")); err != nil {
		t.Fatalf("writeFileAbsolute failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}

	info, err := os.Lstat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("expected regular file, got symlink")
	}
}

func TestWriteFileAbsolute_OverwritesCircularSymlink(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")

	if err := os.Symlink(b, a); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(a, b); err != nil {
		t.Fatal(err)
	}

	s := &FSStorage{}
	if err := s.writeFileAbsolute(a, []byte("content")); err != nil {
		t.Fatalf("writeFileAbsolute failed: %v", err)
	}

	got, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "content" {
		t.Fatalf("got %q, want %q", got, "content")
	}
}

func TestCopyFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(src, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	s := NewFSStorage(dir)
	if err := s.CopyFile(context.Background(), "static/img/logo.png", src); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "static", "img", "logo.png"))
	if err != nil || string(got) != "png-bytes" {
		t.Fatalf("unexpected copy %q err=%v", got, err)
	}
}

func TestReset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	s := NewFSStorage(dir)
	if err := s.WriteFile(context.Background(), "old.html", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.html")); !os.IsNotExist(err) {
		t.Fatal("expected old output to be removed")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatal("expected output dir to exist")
	}

	if err := NewFSStorage("").Reset(context.Background()); err == nil {
		t.Fatal("expected refusal for empty root")
	}
}
