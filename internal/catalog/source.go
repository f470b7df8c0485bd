package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
)

//go:embed seed/catalog.json
var seedJSON []byte

// Source loads a catalog at startup. Sources are read-only: the store never
// writes mutations back.
type Source interface {
	Load(ctx context.Context) (Catalog, error)
	Name() string
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// Load decodes the embedded seed.
func (EmbeddedSource) Load(_ context.Context) (Catalog, error) {
	return Decode(bytes.NewReader(seedJSON))
}

// Name implements Source.
func (EmbeddedSource) Name() string { return "embedded" }

// Decode reads a JSON catalog and validates it.
func Decode(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// Load reads src and builds a Store.
func Load(ctx context.Context, src Source) (*Store, error) {
	c, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}
	return Open(c)
}
