package catalog

import (
	"bytes"
	"context"
)

// ObjectDownloader fetches a whole object by key. *storage.S3 satisfies it.
type ObjectDownloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// S3Source imports a JSON catalog object from a bucket.
type S3Source struct {
	objects ObjectDownloader
	key     string
}

// NewS3Source creates a source reading key through objects.
func NewS3Source(objects ObjectDownloader, key string) *S3Source {
	return &S3Source{objects: objects, key: key}
}

// Name implements Source.
func (s *S3Source) Name() string { return "s3" }

// Load downloads and decodes the catalog object.
func (s *S3Source) Load(ctx context.Context) (Catalog, error) {
	raw, err := s.objects.Download(ctx, s.key)
	if err != nil {
		return Catalog{}, err
	}
	return Decode(bytes.NewReader(raw))
}
