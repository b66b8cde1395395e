// storage/local.go - Disk-backed blob store for development. Files are
// served back through the app's /media static route.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"xmasbingo/models"

	"github.com/google/uuid"
)

type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Upload(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	dst, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", &models.TransportError{Op: "upload blob", Err: err}
	}

	// Write through a temp name so a failed copy never leaves a
	// half-written file at the public path.
	tmp := dst + "." + uuid.New().String()[:8] + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", &models.TransportError{Op: "upload blob", Err: err}
	}

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(f, r)
		done <- err
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		os.Remove(tmp)
		return "", &models.TransportError{Op: "upload blob", Err: err}
	}

	return s.baseURL + "/" + key, nil
}

func (s *LocalStore) Delete(ctx context.Context, publicURL string) error {
	if !s.Owns(publicURL) {
		return nil
	}
	key := strings.TrimPrefix(publicURL, s.baseURL+"/")
	dst, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return &models.TransportError{Op: "delete blob", Err: err}
	}
	return nil
}

func (s *LocalStore) Owns(publicURL string) bool {
	return strings.HasPrefix(publicURL, s.baseURL+"/")
}

// pathFor maps a bucket key to a path under root, refusing keys that
// would escape it.
func (s *LocalStore) pathFor(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return "", &models.ValidationError{Reason: "invalid object key"}
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
