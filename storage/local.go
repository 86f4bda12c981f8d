package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local writes files below a directory served under a URL prefix.
type Local struct {
	dir     string
	urlBase string
}

// NewLocal creates dir if needed.
func NewLocal(dir, urlBase string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{dir: dir, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// Dir is the root directory of stored files.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(l.dir, filepath.FromSlash(clean)), nil
}

// Save writes body to key.
func (l *Local) Save(_ context.Context, key string, body io.Reader, _ string) (Object, error) {
	dst, err := l.path(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("create upload directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return Object{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return Object{}, fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return Object{}, fmt.Errorf("close file: %w", err)
	}
	return Object{Key: key, URL: l.urlBase + "/" + strings.TrimLeft(key, "/")}, nil
}

// Delete removes key; a missing file is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
