package storage

import (
	"context"
	"io"
)

// Driver abstracts where course content and avatars live. The API and the
// image worker share one driver; paths are opaque keys under the driver's
// root.
type Driver interface {
	// Upload stores a file and returns its storage path and public URL.
	Upload(ctx context.Context, file io.Reader, path string) (storagePath string, publicURL string, err error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// PublicURL returns the URL clients use to fetch the file.
	PublicURL(path string) string

	// Exists reports whether a file is present.
	Exists(ctx context.Context, path string) (bool, error)

	// Reader opens the file for processing (image variants).
	Reader(ctx context.Context, path string) (io.ReadCloser, error)
}
