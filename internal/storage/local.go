package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements ObjectStorage over the local filesystem.
// Only locations under the configured root are served.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a new local filesystem storage rooted at root.
func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

// Supports reports whether location is a file location under the root.
func (l *LocalStorage) Supports(location string) bool {
	_, err := l.resolve(location)
	return err == nil
}

// ListObjects returns all files under the location directory.
func (l *LocalStorage) ListObjects(ctx context.Context, location string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchDir, err := l.resolve(location)
	if err != nil {
		return nil, err
	}

	var objects []string
	err = filepath.Walk(searchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // location doesn't exist, return empty list
			}
			return err
		}
		if !info.IsDir() {
			objects = append(objects, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}

	return objects, nil
}

// Delete removes a file.
func (l *LocalStorage) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := l.resolve(location)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// resolve maps a file:// URI or absolute path to a filesystem path under root.
func (l *LocalStorage) resolve(location string) (string, error) {
	path := location
	if strings.Contains(location, "://") {
		u, err := url.Parse(location)
		if err != nil || u.Scheme != "file" {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedLocation, location)
		}
		path = u.Path
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: relative path %s", ErrUnsupportedLocation, location)
	}

	path = filepath.Clean(path)
	if path != l.root && !strings.HasPrefix(path, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrUnsupportedLocation, location, l.root)
	}
	return path, nil
}
