package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
)

// ErrUnknownBucket is returned by a Static opener for names it does not hold.
var ErrUnknownBucket = errors.New("storage: unknown bucket")

// Opener opens object storage buckets by name.
type Opener interface {
	OpenBucket(ctx context.Context, name string) (*blob.Bucket, error)
}

// OpenFunc opens a single bucket.
type OpenFunc func(ctx context.Context, name string) (*blob.Bucket, error)

// Buckets is an Opener that opens each bucket once and keeps it until Close.
// It is safe for concurrent use.
type Buckets struct {
	open OpenFunc

	mu      sync.Mutex
	buckets map[string]*blob.Bucket
	closed  bool
}

// NewBuckets returns a caching Opener backed by open.
func NewBuckets(open OpenFunc) *Buckets {
	return &Buckets{
		open:    open,
		buckets: make(map[string]*blob.Bucket),
	}
}

// OpenBucket returns the bucket called name, opening it on first use.
func (b *Buckets) OpenBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	if name == "" {
		return nil, errors.New("storage: empty bucket name")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.New("storage: buckets closed")
	}
	if bkt, ok := b.buckets[name]; ok {
		return bkt, nil
	}

	bkt, err := b.open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("storage: open bucket %s: %w", name, err)
	}
	b.buckets[name] = bkt
	return bkt, nil
}

// Close closes every bucket opened so far.
func (b *Buckets) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for name, bkt := range b.buckets {
		if err := bkt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bucket %s: %w", name, err))
		}
	}
	b.buckets = nil
	return errors.Join(errs...)
}

// S3 opens buckets through an existing S3 client.
func S3(client *s3.Client) OpenFunc {
	return func(ctx context.Context, name string) (*blob.Bucket, error) {
		return s3blob.OpenBucketV2(ctx, client, name, nil)
	}
}

// URL opens buckets with blob.OpenBucket. Every "{bucket}" in pattern is
// replaced with the bucket name, e.g.
//
//	file:///srv/mirror/{bucket}
//	s3://{bucket}?region=eu-central-1&awssdk=v2
//	gs://{bucket}
//
// The file, s3 and gs drivers are linked in.
func URL(pattern string) OpenFunc {
	return func(ctx context.Context, name string) (*blob.Bucket, error) {
		return blob.OpenBucket(ctx, strings.ReplaceAll(pattern, "{bucket}", name))
	}
}

// Static serves a fixed set of already opened buckets.
func Static(buckets map[string]*blob.Bucket) OpenFunc {
	return func(_ context.Context, name string) (*blob.Bucket, error) {
		bkt, ok := buckets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, name)
		}
		return bkt, nil
	}
}
