package plan

import (
	"context"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ligustah/stacfetch/pkg/resolve"
	"github.com/ligustah/stacfetch/pkg/selection"
)

// Builder turns selections into plans using one resolver.
type Builder struct {
	resolver resolve.Resolver
	log      *zap.Logger
}

// NewBuilder creates a builder. A nil log disables logging.
func NewBuilder(resolver resolve.Resolver, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{resolver: resolver, log: log}
}

// Build resolves every scene of sel and returns one task per resolved
// object, written to outputRoot/<scene>/<object base name>. Scenes are
// visited in the order returned by sel.IDs. The first resolution error
// aborts the build; no partial plan is returned.
func (b *Builder) Build(ctx context.Context, sel *selection.Selection, outputRoot string) (*Plan, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	ids, err := sel.IDs()
	if err != nil {
		return nil, err
	}
	products, err := sel.ProductsToDownload()
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	p := &Plan{SelectionID: sel.ID, Tasks: []Task{}}
	seen := make(map[string]struct{})
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		objects, err := b.resolver.Resolve(ctx, id, productIDs)
		if err != nil {
			return nil, err
		}

		for _, obj := range objects {
			output := filepath.Join(outputRoot, id, path.Base(obj.Key))
			if _, ok := seen[output]; ok {
				b.log.Warn("skipping duplicate output",
					zap.String("scene", id),
					zap.String("product", obj.ProductID),
					zap.String("output", output),
				)
				continue
			}
			seen[output] = struct{}{}

			p.Tasks = append(p.Tasks, Task{
				Bucket: obj.Bucket,
				Key:    obj.Key,
				Output: output,
			})
		}
		b.log.Info("resolved scene",
			zap.String("scene", id),
			zap.Int("objects", len(objects)),
		)
	}
	return p, nil
}
