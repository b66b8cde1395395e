// storage/storage.go - Blob store contract for proof uploads.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// UploadTimeout bounds a single proof upload. On expiry the upload is
// treated as failed and no submission record is created; an orphaned
// blob from a half-finished upload is acceptable garbage.
const UploadTimeout = 90 * time.Second

// BlobStore hosts binary proof files behind public URLs. Delete is
// best-effort: a failed delete never blocks removing the submission
// record that referenced the blob.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64) (publicURL string, err error)
	Delete(ctx context.Context, publicURL string) error
	// Owns reports whether the URL points into this store, as opposed
	// to an external video link or raw attestation text.
	Owns(publicURL string) bool
}

// ObjectKey builds the bucket path for a proof file:
// {group}/{username}/{squareIndex}_{timestamp}.{ext}
func ObjectKey(group, username string, squareIndex int, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%d_%d.%s", group, username, squareIndex, time.Now().UnixMilli(), ext)
}
