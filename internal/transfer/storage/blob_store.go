// Package storage keeps envelope ciphertexts in a gocloud.dev blob bucket.
// The bucket is chosen by URL: mem:// for tests, file:///path for a single
// node, s3://bucket?region=... for shared storage.
package storage

import (
	"context"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/allisson/filedrop/internal/errors"
)

const contentType = "application/octet-stream"

// ErrEnvelopeMissing indicates no ciphertext is stored under a key. It is
// deliberately not a not-found kind: a transfer row without its blob is a
// storage fault, not a client error.
var ErrEnvelopeMissing = apperrors.New("envelope missing from blob store")

// BlobStore implements the transfer EnvelopeStore on a blob bucket.
type BlobStore struct {
	bucket *blob.Bucket
}

// NewBlobStore wraps an open bucket.
func NewBlobStore(bucket *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bucket}
}

// OpenBlobStore opens the bucket at url.
func OpenBlobStore(ctx context.Context, url string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open blob bucket")
	}
	return NewBlobStore(bucket), nil
}

// Put writes ciphertext under key, replacing any previous content.
func (s *BlobStore) Put(ctx context.Context, key string, ciphertext []byte) error {
	err := s.bucket.WriteAll(ctx, key, ciphertext, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return apperrors.Wrapf(err, "failed to write blob %q", key)
	}
	return nil
}

// Get reads the ciphertext stored under key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrapf(ErrEnvelopeMissing, "blob %q", key)
		}
		return nil, apperrors.Wrapf(err, "failed to read blob %q", key)
	}
	return data, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return apperrors.Wrapf(err, "failed to delete blob %q", key)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *BlobStore) Ping(ctx context.Context) error {
	if _, err := s.bucket.IsAccessible(ctx); err != nil {
		return apperrors.Wrap(err, "blob bucket not accessible")
	}
	return nil
}

// Close releases the bucket.
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}
