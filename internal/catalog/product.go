// Package catalog models the product catalog and extracts product mentions
// from free text.
package catalog

import (
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Product is one catalog entry.
type Product struct {
	Name        string `csv:"Product Name" json:"name"`
	Category    string `csv:"Category" json:"category"`
	Subcategory string `csv:"Subcategory" json:"subcategory,omitempty"`
}

// LoadCSV reads the product catalog from a CSV with "Product Name",
// "Category" and "Subcategory" columns. Rows without a product name are
// skipped. Order is preserved; it breaks confidence ties downstream.
func LoadCSV(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var raw []Product
	if err := csvutil.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}

	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		p.Category = strings.TrimSpace(p.Category)
		p.Subcategory = strings.TrimSpace(p.Subcategory)
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, eris.Errorf("catalog: no products in %s", path)
	}
	return products, nil
}
