package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type gcsStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore keeps objects in a Google Cloud Storage bucket. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or the ambient service account.
func NewGCSStore(ctx context.Context, bucket string) (FileStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET")
	}
	var opts []option.ClientOption
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &gcsStore{client: client, bucket: bucket}, nil
}

func (s *gcsStore) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return w.Close()
}

func (s *gcsStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}
