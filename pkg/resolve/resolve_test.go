package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	"github.com/ligustah/stacfetch/pkg/catalog"
	"github.com/ligustah/stacfetch/pkg/storage"
)

const productDir = "Sentinel-2/MSI/L2A/2024/05/04/S2A.SAFE"

const manifestXML = `<?xml version="1.0" encoding="UTF-8"?>
<xfdu:XFDU xmlns:xfdu="urn:ccsds:schema:xfdu:1" version="esa/safe/sentinel/1.1/sentinel-2/msi/archive_l2a_user_product">
  <metadataSection/>
  <dataObjectSection>
    <dataObject ID="IMG_DATA_Band_B02_10m_Tile1_Data">
      <byteStream mimeType="application/octet-stream" size="1024">
        <fileLocation locatorType="URL" href="./GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_B02_10m.jp2"/>
        <checksum checksumName="MD5">0123456789abcdef</checksum>
      </byteStream>
    </dataObject>
    <dataObject ID="IMG_DATA_Band_TCI_10m_Tile1_Data">
      <byteStream mimeType="application/octet-stream" size="2048">
        <fileLocation locatorType="URL" href="./GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_TCI_10m.jp2"/>
        <checksum checksumName="MD5"> fedcba9876543210 </checksum>
      </byteStream>
    </dataObject>
    <dataObject ID="IMG_DATA_Band_TCI_10m_Tile2_Data">
      <byteStream mimeType="application/octet-stream" size="4096">
        <fileLocation locatorType="URL" href="./GRANULE/L2A_T08VPJ/IMG_DATA/R10m/T08VPJ_TCI_10m.jp2"/>
        <checksum checksumName="MD5">aaaa</checksum>
      </byteStream>
    </dataObject>
    <dataObject ID="IMG_DATA_Band_B03_10m_Tile1_Data">
      <byteStream mimeType="application/octet-stream">
        <fileLocation locatorType="URL" href="./GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_B03_10m.jp2"/>
        <checksum checksumName="MD5">bbbb</checksum>
      </byteStream>
    </dataObject>
    <dataObject ID="IMG_DATA_Band_B04_10m_Tile1_Data">
      <byteStream mimeType="application/octet-stream" size="10">
        <fileLocation locatorType="URL" href="GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_B04_10m.jp2"/>
        <checksum checksumName="MD5">cccc</checksum>
      </byteStream>
    </dataObject>
    <dataObject ID="IMG_DATA_Band_B08_10m_Tile1_Data">
      <byteStream mimeType="application/octet-stream" size="10">
        <fileLocation locatorType="URL" href="./GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_B08_10m.jp2"/>
        <checksum checksumName="MD5"></checksum>
      </byteStream>
    </dataObject>
  </dataObjectSection>
</xfdu:XFDU>`

type fakeCatalog struct {
	items map[string]*catalog.Item
	calls int
}

func (c *fakeCatalog) Item(_ context.Context, collection, id string) (*catalog.Item, error) {
	c.calls++
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("fetch catalog item %s/%s: not found", collection, id)
	}
	return item, nil
}

type countingOpener struct {
	opener storage.Opener
	opens  int
}

func (o *countingOpener) OpenBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	o.opens++
	return o.opener.OpenBucket(ctx, name)
}

func productItem(id, href string) *catalog.Item {
	return &catalog.Item{
		ID: id,
		Assets: map[string]catalog.Asset{
			"PRODUCT": {
				Href: "https://zipper.dataspace.copernicus.eu/odata/v1/Products(x)/$value",
				Fields: map[string]any{
					"alternate": map[string]any{
						"s3": map[string]any{"href": href},
					},
				},
			},
		},
	}
}

func newManifestFixture(t *testing.T, manifest string) (*fakeCatalog, *countingOpener) {
	t.Helper()
	ctx := context.Background()

	bkt := memblob.OpenBucket(nil)
	t.Cleanup(func() { bkt.Close() })
	if err := bkt.WriteAll(ctx, productDir+"/manifest.safe", []byte(manifest), nil); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cat := &fakeCatalog{items: map[string]*catalog.Item{
		"S2A.SAFE": productItem("S2A.SAFE", "/eodata/"+productDir),
	}}
	opener := &countingOpener{opener: storage.NewBuckets(storage.Static(map[string]*blob.Bucket{"eodata": bkt}))}
	return cat, opener
}

func TestParseManifestSkipsIncompleteEntries(t *testing.T) {
	entries, err := ParseManifest(strings.NewReader(manifestXML))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 complete entries, got %d: %+v", len(entries), entries)
	}
	tci := entries[1]
	if tci.ID != "IMG_DATA_Band_TCI_10m_Tile1_Data" {
		t.Errorf("unexpected id %s", tci.ID)
	}
	if tci.Size != 2048 {
		t.Errorf("unexpected size %d", tci.Size)
	}
	if tci.Href != "GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_TCI_10m.jp2" {
		t.Errorf("unexpected href %s", tci.Href)
	}
	if tci.Checksum != "fedcba9876543210" || tci.ChecksumAlgorithm != "MD5" {
		t.Errorf("unexpected checksum %s %s", tci.ChecksumAlgorithm, tci.Checksum)
	}
}

func TestParseManifestErrors(t *testing.T) {
	_, err := ParseManifest(strings.NewReader(`<xfdu:XFDU xmlns:xfdu="urn:x"><metadataSection/></xfdu:XFDU>`))
	if !errors.Is(err, ErrNoDataObjectSection) {
		t.Errorf("expected ErrNoDataObjectSection, got %v", err)
	}
	if !errors.Is(err, ErrMalformedManifest) {
		t.Errorf("expected ErrNoDataObjectSection to wrap ErrMalformedManifest")
	}

	entries, err := ParseManifest(strings.NewReader(`<XFDU><dataObjectSection/></XFDU>`))
	if err != nil {
		t.Fatalf("empty section: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestManifestResolverSubstringMatch(t *testing.T) {
	cat, opener := newManifestFixture(t, manifestXML)
	r := NewManifestResolver(cat, opener, "SENTINEL-2")

	objects, err := r.Resolve(context.Background(), "S2A.SAFE", []string{"TCI_10m", "B02_10m"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}

	tci := objects[0]
	if tci.ProductID != "TCI_10m" || tci.Bucket != "eodata" {
		t.Errorf("unexpected object %+v", tci)
	}
	if want := productDir + "/GRANULE/L2A_T08VPH/IMG_DATA/R10m/T08VPH_TCI_10m.jp2"; tci.Key != want {
		t.Errorf("key = %s, want %s", tci.Key, want)
	}
	if tci.Size != 2048 {
		t.Errorf("size = %d, want 2048 (first match in document order)", tci.Size)
	}
	if !strings.HasSuffix(objects[1].Key, "T08VPH_B02_10m.jp2") {
		t.Errorf("unexpected B02 key %s", objects[1].Key)
	}

	if cat.calls != 1 {
		t.Errorf("expected 1 catalog fetch, got %d", cat.calls)
	}
	if opener.opens != 1 {
		t.Errorf("expected 1 manifest fetch, got %d", opener.opens)
	}
}

func TestManifestResolverNoMatch(t *testing.T) {
	cat, opener := newManifestFixture(t, manifestXML)
	r := NewManifestResolver(cat, opener, "SENTINEL-2")

	_, err := r.Resolve(context.Background(), "S2A.SAFE", []string{"TCI_10m", "B99_10m"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.ProductID != "B99_10m" || rerr.SceneID != "S2A.SAFE" {
		t.Errorf("unexpected error context %+v", rerr)
	}
	if !strings.Contains(err.Error(), "B99_10m") {
		t.Errorf("error %q does not name the product", err)
	}
}

func TestManifestResolverIncompleteEntryIsNoMatch(t *testing.T) {
	cat, opener := newManifestFixture(t, manifestXML)
	r := NewManifestResolver(cat, opener, "SENTINEL-2")

	_, err := r.Resolve(context.Background(), "S2A.SAFE", []string{"B03_10m"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for skipped entry, got %v", err)
	}
}

func TestManifestResolverStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		item *catalog.Item
		want error
	}{
		{
			name: "no product asset",
			item: &catalog.Item{ID: "S2A.SAFE", Assets: map[string]catalog.Asset{}},
			want: ErrMissingField,
		},
		{
			name: "no alternate href",
			item: &catalog.Item{ID: "S2A.SAFE", Assets: map[string]catalog.Asset{"PRODUCT": {Href: "x"}}},
			want: ErrMissingField,
		},
		{
			name: "relative href",
			item: productItem("S2A.SAFE", "eodata/"+productDir),
			want: ErrMalformedURL,
		},
		{
			name: "bucket only",
			item: productItem("S2A.SAFE", "/eodata/"),
			want: ErrMalformedURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, opener := newManifestFixture(t, manifestXML)
			cat.items["S2A.SAFE"] = tt.item

			_, err := NewManifestResolver(cat, opener, "SENTINEL-2").Resolve(context.Background(), "S2A.SAFE", []string{"TCI_10m"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if opener.opens != 0 {
				t.Errorf("expected no storage access, got %d", opener.opens)
			}
		})
	}
}

func TestManifestResolverRejectsHTML(t *testing.T) {
	cat, opener := newManifestFixture(t, "<!DOCTYPE html><html><body>Access denied</body></html>")
	r := NewManifestResolver(cat, opener, "SENTINEL-2")

	_, err := r.Resolve(context.Background(), "S2A.SAFE", []string{"TCI_10m"})
	if !errors.Is(err, ErrMalformedManifest) {
		t.Fatalf("expected ErrMalformedManifest, got %v", err)
	}
}

func TestManifestResolverMissingManifest(t *testing.T) {
	cat, opener := newManifestFixture(t, manifestXML)
	cat.items["OTHER.SAFE"] = productItem("OTHER.SAFE", "s3://eodata/Sentinel-2/OTHER.SAFE")
	r := NewManifestResolver(cat, opener, "SENTINEL-2")

	_, err := r.Resolve(context.Background(), "OTHER.SAFE", []string{"TCI_10m"})
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rerr.URL != "s3://eodata/Sentinel-2/OTHER.SAFE/manifest.safe" {
		t.Errorf("unexpected url %s", rerr.URL)
	}
}

func TestDirectResolver(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*catalog.Item{
		"SCENE1": {
			ID: "SCENE1",
			Assets: map[string]catalog.Asset{
				"red": {
					Href:   "https://e84-data.s3.us-west-2.amazonaws.com/sentinel-2-c1-l2a/SCENE1/B04.tif",
					Fields: map[string]any{"file:size": float64(1234), "file:checksum": "1220abcd"},
				},
				"visual":  {Href: "s3://e84-data/sentinel-2-c1-l2a/SCENE1/TCI.tif"},
				"rededge": {Href: "https://e84-data.s3.us-west-2.amazonaws.com/sentinel-2-c1-l2a/SCENE1/B05.tif"},
			},
		},
	}}
	r := NewDirectResolver(cat, "sentinel-2-c1-l2a", nil)

	objects, err := r.Resolve(context.Background(), "SCENE1", []string{"red", "visual"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}

	red := objects[0]
	if red.Bucket != "e84-data" || red.Key != "sentinel-2-c1-l2a/SCENE1/B04.tif" {
		t.Errorf("unexpected red location %s/%s", red.Bucket, red.Key)
	}
	if red.Size != 1234 || red.Checksum != "1220abcd" {
		t.Errorf("unexpected red metadata %+v", red)
	}
	if objects[1].Key != "sentinel-2-c1-l2a/SCENE1/TCI.tif" {
		t.Errorf("unexpected visual key %s", objects[1].Key)
	}
	if cat.calls != 1 {
		t.Errorf("expected 1 catalog fetch, got %d", cat.calls)
	}
}

func TestDirectResolverExactMatch(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*catalog.Item{
		"SCENE1": {ID: "SCENE1", Assets: map[string]catalog.Asset{
			"red-jp2": {Href: "s3://b/red.jp2"},
		}},
	}}

	_, err := NewDirectResolver(cat, "c", nil).Resolve(context.Background(), "SCENE1", []string{"red"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestDirectResolverMalformedURL(t *testing.T) {
	href := "https://example.com/red.tif"
	cat := &fakeCatalog{items: map[string]*catalog.Item{
		"SCENE1": {ID: "SCENE1", Assets: map[string]catalog.Asset{"red": {Href: href}}},
	}}

	_, err := NewDirectResolver(cat, "c", nil).Resolve(context.Background(), "SCENE1", []string{"red"})
	if !errors.Is(err, ErrMalformedURL) {
		t.Fatalf("expected ErrMalformedURL, got %v", err)
	}
	if !strings.Contains(err.Error(), href) {
		t.Errorf("error %q does not name the url", err)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
		err  bool
	}{
		{
			raw:  "https://sentinel-cogs.s3.us-west-2.amazonaws.com/sentinel-s2-l2a-cogs/8/V/PH/B04.tif",
			want: Location{Bucket: "sentinel-cogs", Region: "us-west-2", Key: "sentinel-s2-l2a-cogs/8/V/PH/B04.tif"},
		},
		{
			raw:  "https://b.s3.eu-central-1.amazonaws.com/a%20b.tif",
			want: Location{Bucket: "b", Region: "eu-central-1", Key: "a b.tif"},
		},
		{
			raw:  "s3://bucket/some/key",
			want: Location{Bucket: "bucket", Key: "some/key"},
		},
		{raw: "s3://bucket", err: true},
		{raw: "https://bucket.s3.us-west-2.amazonaws.com/", err: true},
		{raw: "http://bucket.s3.us-west-2.amazonaws.com/key", err: true},
		{raw: "https://storage.googleapis.com/bucket/key", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseS3URL(tt.raw)
			if tt.err {
				if !errors.Is(err, ErrMalformedURL) {
					t.Fatalf("expected ErrMalformedURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseS3URL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
