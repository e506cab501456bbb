package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jperram92/JamesCRM-sub003/internal/config"
	"go.uber.org/zap"
)

// FSStore writes binaries under a configured root directory.
type FSStore struct {
	root string
	log  *zap.Logger
}

func NewStore(cfg config.Config, log *zap.Logger) Store {
	return &FSStore{
		root: cfg.Storage.RootDir,
		log:  log.Named("document.store"),
	}
}

func (s *FSStore) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.log.Debug("document stored", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// resolve joins the path under the root and rejects traversal outside it.
func (s *FSStore) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return filepath.Join(s.root, clean), nil
}
