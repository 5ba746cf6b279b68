package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where the server mounts the upload directory.
const URLPrefix = "uploads"

// LocalUploader writes files under Dir, served at /uploads.
type LocalUploader struct {
	Dir string
}

func NewLocalUploader(dir string) *LocalUploader {
	if dir == "" {
		dir = URLPrefix
	}
	return &LocalUploader{Dir: dir}
}

func (u *LocalUploader) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}
	filename := uuid.New().String() + strings.ToLower(filepath.Ext(name))
	dst, err := os.Create(filepath.Join(u.Dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path.Join(URLPrefix, filename), nil
}

func (u *LocalUploader) Remove(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok || name == "" || name != path.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(u.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
