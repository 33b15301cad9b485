// Package catalog loads the product catalog and answers lookups and shortlists.
package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

// Product is one catalog row. Text fields are "" when the source omits them.
type Product struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Features string          `json:"features"`
	Benefits string          `json:"benefits"`
	Category string          `json:"category"`
	Regions  string          `json:"regions"`
	Prereqs  string          `json:"prereqs"`
	Price    decimal.Decimal `json:"price"`
}

// Catalog is an immutable, ordered set of products.
type Catalog struct {
	products []Product
	index    map[string]int
	hash     string
	source   string
}

// ShortlistRequest holds the filter predicates. A nil BudgetMax disables the
// budget filter.
type ShortlistRequest struct {
	MustHave  []string
	Region    string
	BudgetMax *decimal.Decimal
}

// Load reads the catalog CSV at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, path, "cannot read catalog", err)
	}
	c, err := parse(bytes.NewReader(data), path)
	if err != nil {
		return nil, err
	}
	c.hash = hashBytes(data)
	return c, nil
}

// Parse reads a catalog from r. source is used in error messages only.
func Parse(r io.Reader, source string) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, "cannot read catalog", err)
	}
	c, err := parse(bytes.NewReader(data), source)
	if err != nil {
		return nil, err
	}
	c.hash = hashBytes(data)
	return c, nil
}

// New builds a catalog from products already in memory.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, len(products)),
		index:    make(map[string]int, len(products)),
		source:   "memory",
	}
	copy(c.products, products)
	for i, p := range c.products {
		if _, dup := c.index[p.SKU]; !dup {
			c.index[p.SKU] = i
		}
	}
	h := sha256.New()
	for _, p := range c.products {
		fmt.Fprintf(h, "%s|%s|%s\n", p.SKU, p.Name, p.Price.String())
	}
	c.hash = hex.EncodeToString(h.Sum(nil))
	return c
}

func parse(r io.Reader, source string) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, "catalog is empty", err)
		}
		return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, "malformed catalog header", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	if _, ok := cols["sku"]; !ok {
		return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, "missing sku column", nil)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var products []Product
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, fmt.Sprintf("malformed row %d", line), err)
		}

		price := decimal.Zero
		if raw := field(rec, "price"); raw != "" {
			price, err = decimal.NewFromString(raw)
			if err != nil {
				return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, fmt.Sprintf("invalid price %q on row %d", raw, line), err)
			}
			if price.IsNegative() {
				return nil, perrors.NewLoadError(perrors.ErrCodeCatalogLoad, source, fmt.Sprintf("negative price on row %d", line), nil)
			}
		}

		products = append(products, Product{
			SKU:      field(rec, "sku"),
			Name:     field(rec, "name"),
			Features: field(rec, "features"),
			Benefits: field(rec, "benefits"),
			Category: field(rec, "category"),
			Regions:  field(rec, "regions"),
			Prereqs:  field(rec, "prereqs"),
			Price:    price,
		})
	}

	c := New(products)
	c.source = source
	return c, nil
}

// Lookup returns the first product with the given SKU.
func (c *Catalog) Lookup(sku string) (Product, bool) {
	i, ok := c.index[sku]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Shortlist returns the products matching every predicate, in catalog order.
//
// Features must contain each must-have keyword (case-insensitive substring).
// A product with a blank regions field is treated as available everywhere and
// passes any region filter. When BudgetMax is set, price must not exceed it.
func (c *Catalog) Shortlist(req ShortlistRequest) []Product {
	keywords := make([]string, 0, len(req.MustHave))
	for _, k := range req.MustHave {
		keywords = append(keywords, strings.ToLower(k))
	}
	region := strings.ToLower(req.Region)

	out := make([]Product, 0)
	for _, p := range c.products {
		if !hasFeatures(p.Features, keywords) {
			continue
		}
		if !inRegion(p.Regions, region) {
			continue
		}
		if req.BudgetMax != nil && p.Price.GreaterThan(*req.BudgetMax) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasFeatures(features string, keywords []string) bool {
	text := strings.ToLower(features)
	for _, k := range keywords {
		if !strings.Contains(text, k) {
			return false
		}
	}
	return true
}

func inRegion(regions, region string) bool {
	text := strings.ToLower(regions)
	return strings.TrimSpace(text) == "" || strings.Contains(text, region)
}

// Products returns a copy of all products in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int { return len(c.products) }

// Hash identifies the catalog content for session audit trails.
func (c *Catalog) Hash() string { return c.hash }

func (c *Catalog) Source() string { return c.source }

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
