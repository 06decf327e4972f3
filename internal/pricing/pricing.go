// Package pricing maps categorical item attributes to unit prices.
// Tables are data, loaded from YAML so price changes between lots and
// seasons never require a code change.
package pricing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps an exact category string to a unit price in cents.
type Table map[string]int64

// PriceFor resolves category to a unit price. Unknown or empty
// categories resolve to 0 and never raise.
func (t Table) PriceFor(category string) int64 {
	if t == nil {
		return 0
	}
	return t[strings.TrimSpace(category)]
}

// Resolver holds one table per dataset.
type Resolver struct {
	Tickets Table `yaml:"tickets"`
	Merch   Table `yaml:"merch"`
	Party   Table `yaml:"party"`
}

// Default returns the tables observed in the source forms, in cents.
func Default() *Resolver {
	return &Resolver{
		Tickets: Table{
			"Confra": 7500,
			"Copo":   4000,
		},
		Merch: Table{
			"Jogador":  15000,
			"Torcedor": 11500,
		},
		Party: Table{
			"1º LOTE PROMOCIONAL": 10000,
			"2º LOTE":             12000,
		},
	}
}

// LoadFile reads a YAML price-table file over the defaults. A missing
// file is not an error: defaults apply. A table present in the file
// replaces the corresponding default table entirely.
func LoadFile(path string) (*Resolver, error) {
	r := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read price tables: %w", err)
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse price tables: %w", err)
	}
	return r, nil
}
