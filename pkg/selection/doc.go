// Package selection reads and writes selection documents: which scenes and
// which products of one provider collection should be downloaded.
//
// # Document Format
//
//	id = "element84.sentinel2collection1level2a"
//	provider = "Element84"
//	name = "Sentinel-2 Collection 1 Level 2A"
//	ids_to_download = ["S2A_T08VPH_20240504T195929_L2A"]
//
//	[[products]]
//	id = "visual"
//	name = "True Color"
//	download = true
//
// Duplicate identifiers are removed keeping the first occurrence, so the
// order of ids_to_download is the order of the resulting download plan.
package selection
