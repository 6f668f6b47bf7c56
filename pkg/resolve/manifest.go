package resolve

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ManifestEntry is a data object listed in a product manifest.
type ManifestEntry struct {
	ID                string
	Size              int64
	Href              string // relative to the manifest directory, without "./"
	Checksum          string
	ChecksumAlgorithm string
}

// ParseManifest reads the dataObjectSection of a manifest document.
// Data objects missing any required attribute or element are skipped.
func ParseManifest(r io.Reader) ([]ManifestEntry, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	section := findFirst(doc, "dataObjectSection")
	if section == nil {
		return nil, ErrNoDataObjectSection
	}

	var entries []ManifestEntry
	for n := section.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || n.Data != "dataObject" {
			continue
		}
		if e, ok := parseDataObject(n); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Matches returns the entries whose ID contains productID, in document order.
func Matches(entries []ManifestEntry, productID string) []ManifestEntry {
	var out []ManifestEntry
	for _, e := range entries {
		if strings.Contains(e.ID, productID) {
			out = append(out, e)
		}
	}
	return out
}

func parseDataObject(n *xmlquery.Node) (ManifestEntry, bool) {
	id := n.SelectAttr("ID")
	if id == "" {
		return ManifestEntry{}, false
	}

	byteStream := firstChild(n, "byteStream")
	if byteStream == nil {
		return ManifestEntry{}, false
	}
	size, err := strconv.ParseInt(byteStream.SelectAttr("size"), 10, 64)
	if err != nil || size < 0 {
		return ManifestEntry{}, false
	}

	location := findFirst(n, "fileLocation")
	if location == nil {
		return ManifestEntry{}, false
	}
	href, ok := strings.CutPrefix(location.SelectAttr("href"), "./")
	if !ok || href == "" {
		return ManifestEntry{}, false
	}

	checksum := findFirst(n, "checksum")
	if checksum == nil {
		return ManifestEntry{}, false
	}
	algorithm := checksum.SelectAttr("checksumName")
	sum := strings.TrimSpace(checksum.InnerText())
	if algorithm == "" || sum == "" {
		return ManifestEntry{}, false
	}

	return ManifestEntry{
		ID:                id,
		Size:              size,
		Href:              href,
		Checksum:          sum,
		ChecksumAlgorithm: algorithm,
	}, true
}

func firstChild(n *xmlquery.Node, name string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return c
		}
	}
	return nil
}

// findFirst does a depth-first search of n and its descendants for an
// element with the given local name.
func findFirst(n *xmlquery.Node, name string) *xmlquery.Node {
	if n.Type == xmlquery.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, name); found != nil {
			return found
		}
	}
	return nil
}
