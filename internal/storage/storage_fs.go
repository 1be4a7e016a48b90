package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStorage writes the generated site below Root.
type FSStorage struct {
	Root string
}

func NewFSStorage(root string) *FSStorage {
	return &FSStorage{Root: root}
}

// Reset empties Root, creating it when missing.
func (s *FSStorage) Reset(ctx context.Context) error {
	if s.Root == "" || s.Root == "/" {
		return fmt.Errorf("refusing to reset output root %q", s.Root)
	}
	if err := os.RemoveAll(s.Root); err != nil {
		return fmt.Errorf("remove output: %w", err)
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	return nil
}

// WriteFile stores content at destPath, a slash-separated path relative
// to Root.
func (s *FSStorage) WriteFile(ctx context.Context, destPath string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.Path(destPath)
	if err != nil {
		return err
	}
	return s.writeFileAbsolute(fullPath, content)
}

// CopyFile copies the file at srcPath to destPath below Root.
func (s *FSStorage) CopyFile(ctx context.Context, destPath string, srcPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.Path(destPath)
	if err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	if err := prepareDest(fullPath); err != nil {
		return err
	}
	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// Path resolves destPath below Root. Paths that would escape Root are
// rejected.
func (s *FSStorage) Path(destPath string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(destPath, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid output path %q", destPath)
	}
	return filepath.Join(s.Root, rel), nil
}

func (s *FSStorage) writeFileAbsolute(fullPath string, content []byte) error {
	if err := prepareDest(fullPath); err != nil {
		return err
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// prepareDest creates the parent directory and removes any existing file
// or symlink so the write does not follow a stale link.
func prepareDest(fullPath string) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing: %w", err)
	}
	return nil
}
