package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
)

// S3Backend puts documents as objects in S3 or any S3-compatible store.
// The location host is the bucket.
type S3Backend struct {
	client *minio.Client
	def    bmio.Format
}

// NewS3Backend wraps an existing client.
func NewS3Backend(client *minio.Client, def bmio.Format) *S3Backend {
	return &S3Backend{client: client, def: def}
}

func s3Target(loc Location) (bucket, key string, err error) {
	if loc.Host == "" || loc.Path == "" {
		return "", "", fmt.Errorf("%w: want s3://<bucket>/<key>, got %q", ErrEmptyKey, loc.Raw)
	}
	return loc.Host, loc.Path, nil
}

// Store implements Backend.
func (b *S3Backend) Store(ctx context.Context, loc Location, m *building.Map) (int, error) {
	bucket, key, err := s3Target(loc)
	if err != nil {
		return 0, err
	}
	f := bmio.FormatFromPath(key, b.def)
	data, err := encode(m, f)
	if err != nil {
		return 0, err
	}
	_, err = b.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: f.ContentType(),
	})
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

var _ Backend = (*S3Backend)(nil)
