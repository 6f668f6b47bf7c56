package resolve

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/ligustah/stacfetch/pkg/storage"
)

const (
	// DefaultProductAsset is the catalog asset describing the whole product.
	DefaultProductAsset = "PRODUCT"

	// DefaultManifestName is the manifest file inside a product directory.
	DefaultManifestName = "manifest.safe"
)

// ManifestResolver resolves products listed in a manifest stored next to
// the product's files. The catalog record only points at the product
// directory, through the bulk asset's alternate.s3.href member.
type ManifestResolver struct {
	catalog      Catalog
	buckets      storage.Opener
	collection   string
	productAsset string
	manifestName string
	log          *zap.Logger
}

// ManifestOption configures a ManifestResolver.
type ManifestOption func(*ManifestResolver)

// WithProductAsset sets the name of the bulk product asset.
func WithProductAsset(name string) ManifestOption {
	return func(r *ManifestResolver) {
		r.productAsset = name
	}
}

// WithManifestName sets the manifest file name inside the product directory.
func WithManifestName(name string) ManifestOption {
	return func(r *ManifestResolver) {
		r.manifestName = name
	}
}

// WithManifestLogger sets the logger.
func WithManifestLogger(log *zap.Logger) ManifestOption {
	return func(r *ManifestResolver) {
		r.log = log
	}
}

// NewManifestResolver creates a resolver for items of collection.
func NewManifestResolver(cat Catalog, buckets storage.Opener, collection string, opts ...ManifestOption) *ManifestResolver {
	r := &ManifestResolver{
		catalog:      cat,
		buckets:      buckets,
		collection:   collection,
		productAsset: DefaultProductAsset,
		manifestName: DefaultManifestName,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the catalog record and the manifest of sceneID once, then
// matches every product id against the manifest entries. An entry matches
// when its ID contains the product id; when several do, the first in
// document order wins.
func (r *ManifestResolver) Resolve(ctx context.Context, sceneID string, productIDs []string) ([]Object, error) {
	item, err := r.catalog.Item(ctx, r.collection, sceneID)
	if err != nil {
		return nil, &Error{SceneID: sceneID, Err: err}
	}

	asset, ok := item.Assets[r.productAsset]
	if !ok {
		return nil, &Error{SceneID: sceneID, Err: fmt.Errorf("%w: asset %q", ErrMissingField, r.productAsset)}
	}
	href, ok := asset.LookupString("alternate", "s3", "href")
	if !ok {
		return nil, &Error{SceneID: sceneID, Err: fmt.Errorf("%w: assets.%s.alternate.s3.href", ErrMissingField, r.productAsset)}
	}
	bucket, prefix, err := splitStoragePath(href)
	if err != nil {
		return nil, &Error{SceneID: sceneID, URL: href, Err: err}
	}

	key := prefix + "/" + r.manifestName
	manifestURL := "s3://" + bucket + "/" + key

	bkt, err := r.buckets.OpenBucket(ctx, bucket)
	if err != nil {
		return nil, &Error{SceneID: sceneID, URL: manifestURL, Err: err}
	}
	data, err := bkt.ReadAll(ctx, key)
	if err != nil {
		return nil, &Error{SceneID: sceneID, URL: manifestURL, Err: fmt.Errorf("fetch manifest: %w", err)}
	}
	if mt := mimetype.Detect(data); mt.Is("text/html") {
		return nil, &Error{SceneID: sceneID, URL: manifestURL, Err: fmt.Errorf("%w: got %s document", ErrMalformedManifest, mt.String())}
	}

	entries, err := ParseManifest(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{SceneID: sceneID, URL: manifestURL, Err: err}
	}
	r.log.Debug("parsed manifest",
		zap.String("scene", sceneID),
		zap.String("manifest", manifestURL),
		zap.Int("entries", len(entries)),
	)

	objects := make([]Object, 0, len(productIDs))
	for _, productID := range productIDs {
		matches := Matches(entries, productID)
		if len(matches) == 0 {
			return nil, &Error{SceneID: sceneID, ProductID: productID, URL: manifestURL, Err: ErrNoMatch}
		}
		if len(matches) > 1 {
			ids := make([]string, len(matches))
			for i, m := range matches {
				ids[i] = m.ID
			}
			r.log.Warn("product matches several manifest entries, using the first",
				zap.String("scene", sceneID),
				zap.String("product", productID),
				zap.Strings("entries", ids),
			)
		}

		entry := matches[0]
		objects = append(objects, Object{
			ProductID:         productID,
			Bucket:            bucket,
			Key:               path.Join(prefix, entry.Href),
			Size:              entry.Size,
			Checksum:          entry.Checksum,
			ChecksumAlgorithm: entry.ChecksumAlgorithm,
		})
	}
	return objects, nil
}

// splitStoragePath splits "/bucket/prefix..." or "s3://bucket/prefix..." into
// the bucket and the prefix.
func splitStoragePath(href string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(href, "s3://")
	if !ok {
		rest, ok = strings.CutPrefix(href, "/")
	}
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrMalformedURL, href)
	}

	bucket, prefix, _ = strings.Cut(strings.TrimRight(rest, "/"), "/")
	if bucket == "" || prefix == "" {
		return "", "", fmt.Errorf("%w: %s", ErrMalformedURL, href)
	}
	return bucket, prefix, nil
}
