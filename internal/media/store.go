package media

import (
	"bytes"
	"context"
	"errors"

	"pycsa-web/internal/baas"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the bucket the images live in.
type ObjectStore interface {
	// Put writes a new object; it never overwrites an existing path.
	Put(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	// Remove deletes one object, returning ErrObjectNotFound when absent.
	Remove(ctx context.Context, path string) error
}

type baasStore struct {
	client *baas.Client
	bucket string
}

// NewBaaSStore creates an ObjectStore over the BaaS storage API
func NewBaaSStore(client *baas.Client, bucket string) ObjectStore {
	return &baasStore{client: client, bucket: bucket}
}

func (s *baasStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	return s.client.Upload(ctx, s.bucket, path, bytes.NewReader(data), baas.UploadOptions{
		ContentType:  contentType,
		CacheControl: cacheControlSec,
		Upsert:       false,
	})
}

func (s *baasStore) PublicURL(path string) string {
	return s.client.PublicURL(s.bucket, path)
}

func (s *baasStore) Remove(ctx context.Context, path string) error {
	removed, err := s.client.Remove(ctx, s.bucket, path)
	if err != nil {
		if baas.IsNotFound(err) {
			return ErrObjectNotFound
		}
		return err
	}
	if len(removed) == 0 {
		return ErrObjectNotFound
	}
	return nil
}
