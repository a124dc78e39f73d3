// Package storage keeps uploaded course media and generated images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"innerspark/config"
)

// ErrNotFound is returned when a key has no object behind it.
var ErrNotFound = errors.New("storage: object not found")

// FileStore saves and opens objects by key.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Default is the store used by handlers.
var Default FileStore

// Setup selects the store from STORAGE_DRIVER.
func Setup(ctx context.Context, cfg *config.Config) error {
	switch cfg.StorageDriver {
	case "gcs":
		s, err := NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return err
		}
		Default = s
	case "local", "":
		s, err := NewLocalStore(cfg.StorageDir)
		if err != nil {
			return err
		}
		Default = s
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return nil
}

type localStore struct {
	root string
}

// NewLocalStore stores objects as files under root.
func NewLocalStore(root string) (FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &localStore{root: root}, nil
}

// path maps key under root; cleaning against "/" strips any leading "..".
func (s *localStore) path(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty storage key")
	}
	return filepath.Join(s.root, filepath.Clean("/"+key)), nil
}

func (s *localStore) Save(_ context.Context, key string, r io.Reader, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (s *localStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *localStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
