// Package plan builds and persists download plans.
//
// A plan is a frozen snapshot of a resolved selection: an ordered list of
// (bucket, key, output) tasks tagged with the selection id. Replaying a
// saved plan never contacts the catalog again.
//
// # Document Format
//
//	{
//	  "selection_id": "element84.sentinel2collection1level2a",
//	  "tasks": [
//	    {
//	      "bucket": "e84-earth-search-sentinel-data",
//	      "key": "sentinel-2-c1-l2a/8/V/PH/2024/5/S2A_T08VPH_20240504T195929_L2A/TCI.tif",
//	      "output": "data/S2A_T08VPH_20240504T195929_L2A/TCI.tif"
//	    }
//	  ]
//	}
//
// Plans can be kept on local disk with [Plan.Write] and [Read], or in any
// gocloud.dev bucket with [Plan.Store] and [Load].
package plan
