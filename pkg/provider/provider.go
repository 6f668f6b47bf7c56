package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	sfhttp "github.com/ligustah/stacfetch/internal/http"
	"github.com/ligustah/stacfetch/pkg/catalog"
	"github.com/ligustah/stacfetch/pkg/resolve"
	"github.com/ligustah/stacfetch/pkg/storage"
)

// Settings locate the catalog and the object storage of a provider.
type Settings struct {
	// CatalogURL is the root of the STAC API.
	CatalogURL string

	// Collection is the catalog collection holding the scenes.
	Collection string

	// Endpoint overrides the S3 endpoint.
	Endpoint string

	// Region of the S3 service.
	Region string

	// Profile selects shared AWS config and credentials.
	Profile string

	// Anonymous sends unsigned S3 requests.
	Anonymous bool

	// PathStyle uses path style bucket addressing.
	PathStyle bool

	// StripGetObjectID removes the x-id parameter from GetObject requests.
	StripGetObjectID bool

	// BucketURL, when set, opens buckets with a gocloud URL instead of the
	// S3 settings above. "{bucket}" is replaced with the bucket name.
	BucketURL string
}

// DefaultSettings returns the public endpoints of kind.
func DefaultSettings(kind Kind) Settings {
	switch kind {
	case Copernicus:
		return Settings{
			CatalogURL:       "https://catalogue.dataspace.copernicus.eu/stac",
			Collection:       "SENTINEL-2",
			Endpoint:         "https://eodata.dataspace.copernicus.eu",
			Region:           "us-east-1",
			Profile:          "copernicus",
			PathStyle:        true,
			StripGetObjectID: true,
		}
	case Element84:
		return Settings{
			CatalogURL: "https://earth-search.aws.element84.com/v1",
			Collection: "sentinel-2-c1-l2a",
			Region:     "us-west-2",
			Anonymous:  true,
		}
	default:
		return Settings{}
	}
}

// Options configures New.
type Options struct {
	Settings Settings

	// HTTP configures the catalog client. Default: sfhttp.DefaultOptions()
	HTTP sfhttp.Options

	// Logger is passed to the resolver. Default: no logging.
	Logger *zap.Logger
}

// Provider bundles the resolver and storage access for one kind.
type Provider struct {
	Kind     Kind
	Resolver resolve.Resolver
	Buckets  *storage.Buckets
}

// New builds the provider for kind. The returned Provider must be closed.
func New(ctx context.Context, kind Kind, opts Options) (*Provider, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTP == (sfhttp.Options{}) {
		opts.HTTP = sfhttp.DefaultOptions()
	}
	s := opts.Settings
	if s.CatalogURL == "" || s.Collection == "" {
		return nil, fmt.Errorf("provider %s: catalog url and collection are required", kind)
	}

	buckets, err := openBuckets(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", kind, err)
	}

	cat := catalog.NewClient(s.CatalogURL, sfhttp.NewClient(opts.HTTP))
	log := opts.Logger.With(zap.String("provider", kind.Name()))

	p := &Provider{Kind: kind, Buckets: buckets}
	switch kind {
	case Copernicus:
		p.Resolver = resolve.NewManifestResolver(cat, buckets, s.Collection, resolve.WithManifestLogger(log))
	case Element84:
		p.Resolver = resolve.NewDirectResolver(cat, s.Collection, log)
	default:
		buckets.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return p, nil
}

// Close releases the provider's buckets.
func (p *Provider) Close() error {
	return p.Buckets.Close()
}

func openBuckets(ctx context.Context, s Settings) (*storage.Buckets, error) {
	if s.BucketURL != "" {
		return storage.NewBuckets(storage.URL(s.BucketURL)), nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3Options{
		Region:           s.Region,
		Endpoint:         s.Endpoint,
		Profile:          s.Profile,
		Anonymous:        s.Anonymous,
		PathStyle:        s.PathStyle,
		StripGetObjectID: s.StripGetObjectID,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewBuckets(storage.S3(client)), nil
}
