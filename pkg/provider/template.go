package provider

import (
	"github.com/ligustah/stacfetch/pkg/selection"
)

const sentinel2Description = "Bottom-of-atmosphere reflectance derived from Level-1C " +
	"top-of-atmosphere data by atmospheric correction."

// Template returns a selection with every product of kind listed and only
// the true color product flagged for download. The identifier list holds a
// sample scene.
func Template(kind Kind) (*selection.Selection, error) {
	switch kind {
	case Copernicus:
		return &selection.Selection{
			ID:            string(Copernicus),
			Provider:      "Copernicus",
			Name:          "Sentinel-2 Level 2A Surface Reflectance",
			Description:   sentinel2Description,
			Docs:          "https://documentation.dataspace.copernicus.eu/Data/SentinelMissions/Sentinel2.html#sentinel-2-level-2a-surface-reflectance",
			IDsToDownload: []string{"S2A_MSIL2A_20240504T195901_N0510_R128_T08VPH_20240505T015750.SAFE"},
			Products: []selection.Product{
				{ID: "B02_10m", Name: "Blue"},
				{ID: "B03_10m", Name: "Green"},
				{ID: "B04_10m", Name: "Red"},
				{ID: "B08_10m", Name: "NIR"},
				{ID: "TCI_10m", Name: "True Color", Download: true},
			},
		}, nil
	case Element84:
		return &selection.Selection{
			ID:            string(Element84),
			Provider:      "Element84",
			Name:          "Sentinel-2 Collection 1 Level 2A Surface Reflectance",
			Description:   sentinel2Description,
			Docs:          "https://sentinels.copernicus.eu/web/sentinel/sentinel-data-access/sentinel-products/sentinel-2-data-products/collection-1-level-2a",
			IDsToDownload: []string{"S2A_T08VPH_20240504T195929_L2A"},
			Products: []selection.Product{
				{ID: "blue", Name: "Blue"},
				{ID: "green", Name: "Green"},
				{ID: "red", Name: "Red"},
				{ID: "nir", Name: "NIR"},
				{ID: "visual", Name: "True Color", Download: true},
			},
		}, nil
	default:
		return nil, ErrUnknownKind
	}
}
