// Package catalog fetches single STAC item records over HTTP.
//
// Only exact-identifier lookups are supported:
//
//	GET {base}/collections/{collection}/items/{id}
//
// Each [Asset] keeps its well-known members (href, type, title, roles) as
// fields and everything else in [Asset.Fields], so provider specific
// extensions such as "alternate", "file:size" and "file:checksum" can be
// read with [Asset.Lookup].
package catalog
