// Package resolve maps the products selected for a scene to objects in
// remote storage.
//
// Two strategies exist. [DirectResolver] looks products up as catalog
// assets by exact name and parses each asset href as an S3 URL.
// [ManifestResolver] follows the catalog record to a product directory,
// reads the XML manifest stored there and matches product ids against
// manifest entries by substring, so "TCI_10m" selects
// "IMG_DATA_Band_TCI_10m_Tile1_Data".
//
// Both resolve every requested product of a scene or return an [*Error].
package resolve
