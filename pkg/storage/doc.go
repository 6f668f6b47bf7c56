// Package storage provides the object storage capability used for resolving
// manifests and transferring objects.
//
// Buckets are gocloud.dev/blob buckets. The operations the rest of the module
// relies on are:
//
//	bucket.Attributes(ctx, key)                     // HEAD: size
//	bucket.NewRangeReader(ctx, key, offset, length) // ranged GET
//	bucket.ReadAll(ctx, key)                        // GET
//
// Bucket names come from catalog records and download plans, so callers get
// an [Opener] rather than a single bucket. [Buckets] caches opened buckets
// and is backed by one of:
//   - [S3]: an aws-sdk-go-v2 client built with [NewS3Client]
//   - [URL]: any gocloud URL, with "{bucket}" substituted
//   - [Static]: pre-opened buckets, mostly for tests (memblob)
package storage
