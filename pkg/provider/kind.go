package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for selection ids no provider handles.
var ErrUnknownKind = errors.New("provider: unknown kind")

// Kind identifies a provider collection. Its value is the selection id.
type Kind string

const (
	// Copernicus is Sentinel-2 Level-2A from the Copernicus Data Space
	// Ecosystem, resolved through product manifests.
	Copernicus Kind = "copernicus.sentinel2level2a"

	// Element84 is Sentinel-2 Collection 1 Level-2A from Earth Search,
	// resolved directly from catalog assets.
	Element84 Kind = "element84.sentinel2collection1level2a"
)

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{Copernicus, Element84}
}

// Name is the short provider name, e.g. "copernicus".
func (k Kind) Name() string {
	name, _, _ := strings.Cut(string(k), ".")
	return name
}

// ParseKind returns the kind for a selection or plan id.
func ParseKind(id string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == id {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, id)
}

// Lookup accepts either a full kind or a short provider name.
func Lookup(name string) (Kind, error) {
	for _, k := range Kinds() {
		if k.Name() == name {
			return k, nil
		}
	}
	return ParseKind(name)
}
