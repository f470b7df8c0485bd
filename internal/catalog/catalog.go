// Package catalog owns the in-memory collection of enterprises and domains.
package catalog

import (
	"fmt"

	"github.com/businessbook/directory/internal/models"
)

// Catalog is a full set of enterprises and domains, as loaded from a Source.
type Catalog struct {
	Enterprises []models.Enterprise `json:"enterprises"`
	Domains     []models.Domain     `json:"domains"`
}

// Validate rejects duplicate ids and enterprises whose status and is_active disagree.
// Domain references are not checked; a domain may disappear independently.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Enterprises))
	for _, e := range c.Enterprises {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate enterprise id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	domains := make(map[string]struct{}, len(c.Domains))
	for _, d := range c.Domains {
		if d.ID == "" {
			return fmt.Errorf("domain with empty id")
		}
		if _, dup := domains[d.ID]; dup {
			return fmt.Errorf("duplicate domain id %q", d.ID)
		}
		domains[d.ID] = struct{}{}
	}
	return nil
}
