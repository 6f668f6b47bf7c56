package selection

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalid is wrapped by every error describing a selection that cannot
	// be resolved. It is never worth retrying.
	ErrInvalid = errors.New("selection: invalid")

	// ErrNoIDs is returned when a selection lists no scene identifiers.
	ErrNoIDs = fmt.Errorf("%w: no ids to download", ErrInvalid)

	// ErrNoProducts is returned when no product is flagged for download.
	ErrNoProducts = fmt.Errorf("%w: no products selected for download", ErrInvalid)

	// ErrBadID is returned for scene identifiers that cannot name a
	// directory under the output root.
	ErrBadID = fmt.Errorf("%w: bad scene id", ErrInvalid)

	// ErrPersistence is wrapped by read and write failures.
	ErrPersistence = errors.New("selection: persistence failure")
)

// Selection names the scenes and products to download from one provider
// collection.
type Selection struct {
	// ID picks the provider strategy, e.g. "element84.sentinel2collection1level2a".
	ID            string    `toml:"id"`
	Provider      string    `toml:"provider"`
	Name          string    `toml:"name"`
	Description   string    `toml:"description"`
	Docs          string    `toml:"docs"`
	IDsToDownload []string  `toml:"ids_to_download"`
	Products      []Product `toml:"products"`
}

// Product is a band or derived product offered by a collection.
type Product struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Download bool   `toml:"download"`
}

// Read loads a selection from a TOML file.
func Read(path string) (*Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, path, err)
	}

	var s Selection
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrPersistence, path, err)
	}
	return &s, nil
}

// Write stores the selection as TOML, replacing any existing file.
func (s *Selection) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, path, err)
	}
	return nil
}

// IDs returns the scene identifiers with duplicates removed. The first
// occurrence of each identifier determines its position.
func (s *Selection) IDs() ([]string, error) {
	seen := make(map[string]struct{}, len(s.IDsToDownload))
	ids := make([]string, 0, len(s.IDsToDownload))
	for _, id := range s.IDsToDownload {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	return ids, nil
}

// ProductsToDownload returns the products flagged for download, in
// declaration order.
func (s *Selection) ProductsToDownload() ([]Product, error) {
	var products []Product
	for _, p := range s.Products {
		if p.Download {
			products = append(products, p)
		}
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

// Validate reports whether the selection can be resolved at all.
func (s *Selection) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	ids, err := s.IDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
			return fmt.Errorf("%w: %q", ErrBadID, id)
		}
	}
	products, err := s.ProductsToDownload()
	if err != nil {
		return err
	}
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("%w: product %d has an empty id", ErrInvalid, i)
		}
	}
	return nil
}
