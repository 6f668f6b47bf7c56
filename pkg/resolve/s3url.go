package resolve

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var virtualHostedURL = regexp.MustCompile(`^https://(?P<bucket>[^.]+)\.s3\.(?P<region>[^.]+)\.amazonaws\.com/(?P<key>.+)$`)

// Location is an object in a bucket.
type Location struct {
	Bucket string
	Region string // empty for s3:// URLs
	Key    string
}

// String returns the location as an s3:// URL.
func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseS3URL parses a virtual-hosted S3 URL
// (https://bucket.s3.region.amazonaws.com/key) or an s3://bucket/key URL.
func ParseS3URL(raw string) (Location, error) {
	if rest, ok := strings.CutPrefix(raw, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
		}
		return Location{Bucket: bucket, Key: key}, nil
	}

	m := virtualHostedURL.FindStringSubmatch(raw)
	if m == nil {
		return Location{}, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}
	key, err := url.PathUnescape(m[virtualHostedURL.SubexpIndex("key")])
	if err != nil {
		return Location{}, fmt.Errorf("%w: %s: %v", ErrMalformedURL, raw, err)
	}
	return Location{
		Bucket: m[virtualHostedURL.SubexpIndex("bucket")],
		Region: m[virtualHostedURL.SubexpIndex("region")],
		Key:    key,
	}, nil
}
