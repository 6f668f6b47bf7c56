package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ligustah/stacfetch/pkg/catalog"
)

var (
	// ErrNoMatch is returned when a requested product has no matching
	// asset or manifest entry.
	ErrNoMatch = errors.New("resolve: no matching object for product")

	// ErrMissingField is returned when a catalog record lacks the asset or
	// member that locates the product in storage.
	ErrMissingField = errors.New("resolve: missing field in catalog record")

	// ErrMalformedURL is returned for asset locations that are not object
	// storage URLs.
	ErrMalformedURL = errors.New("resolve: malformed storage url")

	// ErrMalformedManifest is returned when the manifest document cannot be
	// parsed.
	ErrMalformedManifest = errors.New("resolve: malformed manifest")

	// ErrNoDataObjectSection is returned when the manifest has no
	// dataObjectSection element.
	ErrNoDataObjectSection = fmt.Errorf("%w: no dataObjectSection", ErrMalformedManifest)
)

// Object is a remote object matched to a requested product.
type Object struct {
	ProductID         string
	Bucket            string
	Key               string
	Size              int64 // 0 when the catalog does not say
	Checksum          string
	ChecksumAlgorithm string
}

// Resolver maps the products requested for one scene to remote objects.
// Implementations either resolve every product or fail.
type Resolver interface {
	Resolve(ctx context.Context, sceneID string, productIDs []string) ([]Object, error)
}

// Catalog fetches a single catalog record.
type Catalog interface {
	Item(ctx context.Context, collection, id string) (*catalog.Item, error)
}

// Error describes a resolution failure for a scene, and when known the
// product and URL involved.
type Error struct {
	SceneID   string
	ProductID string
	URL       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("resolve scene ")
	b.WriteString(e.SceneID)
	if e.ProductID != "" {
		b.WriteString(" product ")
		b.WriteString(e.ProductID)
	}
	if e.URL != "" {
		b.WriteString(" (")
		b.WriteString(e.URL)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
