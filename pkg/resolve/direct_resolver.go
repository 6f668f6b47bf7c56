package resolve

import (
	"context"

	"go.uber.org/zap"
)

// DirectResolver resolves products that the catalog exposes as assets
// named after the product id.
type DirectResolver struct {
	catalog    Catalog
	collection string
	log        *zap.Logger
}

// NewDirectResolver creates a resolver for items of collection. A nil log
// disables logging.
func NewDirectResolver(cat Catalog, collection string, log *zap.Logger) *DirectResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectResolver{catalog: cat, collection: collection, log: log}
}

// Resolve fetches the catalog record of sceneID once and looks up every
// product id as an asset key. Any missing asset fails the whole scene.
func (r *DirectResolver) Resolve(ctx context.Context, sceneID string, productIDs []string) ([]Object, error) {
	item, err := r.catalog.Item(ctx, r.collection, sceneID)
	if err != nil {
		return nil, &Error{SceneID: sceneID, Err: err}
	}

	objects := make([]Object, 0, len(productIDs))
	for _, productID := range productIDs {
		asset, ok := item.Assets[productID]
		if !ok {
			return nil, &Error{SceneID: sceneID, ProductID: productID, Err: ErrNoMatch}
		}

		loc, err := ParseS3URL(asset.Href)
		if err != nil {
			return nil, &Error{SceneID: sceneID, ProductID: productID, URL: asset.Href, Err: err}
		}

		obj := Object{ProductID: productID, Bucket: loc.Bucket, Key: loc.Key}
		if size, ok := asset.Size(); ok {
			obj.Size = size
		}
		if sum, ok := asset.Checksum(); ok {
			// file:checksum is a multihash; the algorithm is encoded in the value.
			obj.Checksum = sum
			obj.ChecksumAlgorithm = "multihash"
		}
		r.log.Debug("resolved asset",
			zap.String("scene", sceneID),
			zap.String("product", productID),
			zap.Stringer("location", loc),
		)
		objects = append(objects, obj)
	}
	return objects, nil
}
