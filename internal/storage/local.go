package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type LocalStore struct {
	root   string
	logger *slog.Logger
}

func NewLocalStore(root string, logger *slog.Logger) *LocalStore {
	return &LocalStore{root: root, logger: logger}
}

func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	if upload.Content == nil {
		return "", ErrEmptyUpload
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := NewDocumentKey(upload.Filename)
	dst := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("create document dir: %w", err)
	}

	// O_EXCL: a uuid collision must never overwrite an existing document
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	written, err := io.Copy(f, upload.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written == 0 {
		err = ErrEmptyUpload
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("write document: %w", err)
	}

	s.logger.Info("document stored", "key", key, "bytes", written)
	return key, nil
}
