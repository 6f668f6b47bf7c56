package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	sfhttp "github.com/ligustah/stacfetch/internal/http"
)

// Item is a single catalog record.
type Item struct {
	ID         string           `json:"id"`
	Collection string           `json:"collection,omitempty"`
	Assets     map[string]Asset `json:"assets"`
}

// Asset is a named entry of an Item. Members other than the well-known
// ones are kept in Fields.
type Asset struct {
	Href   string
	Type   string
	Title  string
	Roles  []string
	Fields map[string]any
}

// UnmarshalJSON decodes an asset, collecting unknown members in Fields.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Asset{Fields: make(map[string]any)}
	for name, value := range raw {
		var err error
		switch name {
		case "href":
			err = json.Unmarshal(value, &a.Href)
		case "type":
			err = json.Unmarshal(value, &a.Type)
		case "title":
			err = json.Unmarshal(value, &a.Title)
		case "roles":
			err = json.Unmarshal(value, &a.Roles)
		default:
			var v any
			err = json.Unmarshal(value, &v)
			a.Fields[name] = v
		}
		if err != nil {
			return fmt.Errorf("asset member %q: %w", name, err)
		}
	}
	return nil
}

// MarshalJSON encodes the asset with Fields flattened next to the well-known
// members.
func (a Asset) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Fields)+4)
	for k, v := range a.Fields {
		out[k] = v
	}
	out["href"] = a.Href
	if a.Type != "" {
		out["type"] = a.Type
	}
	if a.Title != "" {
		out["title"] = a.Title
	}
	if len(a.Roles) > 0 {
		out["roles"] = a.Roles
	}
	return json.Marshal(out)
}

// Lookup walks nested objects in Fields, e.g. Lookup("alternate", "s3", "href").
func (a Asset) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur, ok := a.Fields[path[0]]
	if !ok {
		return nil, false
	}
	for _, name := range path[1:] {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[name]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString is Lookup for string values.
func (a Asset) LookupString(path ...string) (string, bool) {
	v, ok := a.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Size returns the file:size member, if present.
func (a Asset) Size() (int64, bool) {
	v, ok := a.Lookup("file:size")
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return int64(f), true
}

// Checksum returns the file:checksum member, if present.
func (a Asset) Checksum() (string, bool) {
	return a.LookupString("file:checksum")
}

// Client fetches catalog records by collection and identifier.
type Client struct {
	http    *sfhttp.Client
	baseURL string
}

// NewClient creates a client for the catalog rooted at baseURL
// (e.g. https://earth-search.aws.element84.com/v1).
func NewClient(baseURL string, httpClient *sfhttp.Client) *Client {
	if httpClient == nil {
		httpClient = sfhttp.NewClient(sfhttp.DefaultOptions())
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ItemURL returns the URL of the record for id in collection.
func (c *Client) ItemURL(collection, id string) string {
	return fmt.Sprintf("%s/collections/%s/items/%s", c.baseURL, url.PathEscape(collection), url.PathEscape(id))
}

// Item fetches a single record.
func (c *Client) Item(ctx context.Context, collection, id string) (*Item, error) {
	u := c.ItemURL(collection, id)

	var item Item
	if err := c.http.GetJSON(ctx, u, &item); err != nil {
		return nil, fmt.Errorf("fetch catalog item %s: %w", u, err)
	}
	if item.Assets == nil {
		item.Assets = map[string]Asset{}
	}
	return &item, nil
}
