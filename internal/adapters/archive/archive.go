// Package archive keeps a copy of every uploaded feed so a reconciliation
// run can be audited against exactly the files it was computed from.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 2 * time.Minute

// Archiver stores raw feed bytes for a run and returns where they went.
type Archiver interface {
	Archive(ctx context.Context, runID, name string, data []byte) (string, error)
}

// NopArchiver discards everything. It is used when no bucket is configured.
type NopArchiver struct{}

// Archive returns an empty location.
func (NopArchiver) Archive(context.Context, string, string, []byte) (string, error) {
	return "", nil
}

// GCSArchiver writes feeds to a Google Cloud Storage bucket. It relies on
// Application Default Credentials.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	prefix string
}

// Compile-time checks
var (
	_ Archiver = NopArchiver{}
	_ Archiver = (*GCSArchiver)(nil)
)

// NewGCSArchiver creates a GCS client for the given bucket.
func NewGCSArchiver(ctx context.Context, bucket, prefix string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSArchiver{client: client, bucket: bucket, prefix: prefix}, nil
}

// Archive uploads data as <prefix>/<runID>/<name> and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, runID, name string, data []byte) (string, error) {
	object := ObjectName(a.prefix, runID, name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", object, err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, object), nil
}

// Close releases the underlying client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// ObjectName builds the object path for an archived feed. Only the base name
// of the uploaded file is kept.
func ObjectName(prefix, runID, name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "feed.csv"
	}
	return path.Join(strings.Trim(prefix, "/"), runID, base)
}
