// Package provider selects the resolution strategy and storage access for
// a selection.
//
// The selection id is parsed into a [Kind]; [New] then wires a catalog
// client, an S3 (or gocloud URL) bucket opener and the matching resolver:
//
//	copernicus.sentinel2level2a            manifest resolver, CDSE eodata
//	element84.sentinel2collection1level2a  direct resolver, public AWS buckets
//
// Plans carry the selection id, so a saved plan is executed with the same
// provider it was built with.
package provider
