package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// DefaultRegion is used when neither the options nor the environment name a
// region.
const DefaultRegion = "us-east-1"

// S3Options configures an S3 client.
type S3Options struct {
	// Region of the service. Falls back to the shared config, then DefaultRegion.
	Region string

	// Endpoint overrides the service endpoint (e.g. https://eodata.dataspace.copernicus.eu).
	Endpoint string

	// Profile selects a shared config/credentials profile. Ignored when Anonymous is set.
	Profile string

	// Anonymous sends unsigned requests, for public buckets.
	Anonymous bool

	// PathStyle addresses buckets as {endpoint}/{bucket}/{key}.
	PathStyle bool

	// StripGetObjectID removes the x-id query parameter the SDK adds to
	// GetObject requests. Some S3 compatible services reject it.
	StripGetObjectID bool
}

// NewS3Client builds an S3 client from opts.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	switch {
	case opts.Anonymous:
		loadOpts = append(loadOpts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
	case opts.Profile != "":
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
		if opts.StripGetObjectID {
			o.APIOptions = append(o.APIOptions, addStripGetObjectID)
		}
	}), nil
}

var stripGetObjectID = middleware.BuildMiddlewareFunc("StripGetObjectID", func(
	ctx context.Context, in middleware.BuildInput, next middleware.BuildHandler,
) (middleware.BuildOutput, middleware.Metadata, error) {
	if req, ok := in.Request.(*smithyhttp.Request); ok && req.URL != nil {
		q := req.URL.Query()
		if q.Has("x-id") {
			q.Del("x-id")
			req.URL.RawQuery = q.Encode()
		}
	}
	return next.HandleBuild(ctx, in)
})

func addStripGetObjectID(stack *middleware.Stack) error {
	return stack.Build.Add(stripGetObjectID, middleware.After)
}
