// Package catalog loads product catalogue files and imports them into the
// variant store.
package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// variantNamespace seeds deterministic IDs for variants listed without one,
// so importing the same file twice yields the same rows.
var variantNamespace = uuid.MustParse("3f0b8a52-5d8e-4c57-9a61-0f6cbb1f6d2e")

// Loader reads one catalogue file.
type Loader interface {
	// Load reads a gzipped JSON-lines catalogue and returns its products
	// with their variants.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Entry is one line of a catalogue file.
type Entry struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Category      string           `json:"category"`
	Variants      []VariantEntry   `json:"variants"`
}

// VariantEntry is a purchasable size/color of an Entry.
type VariantEntry struct {
	ID    *uuid.UUID `json:"id,omitempty"`
	Size  string     `json:"size"`
	Color string     `json:"color"`
	Stock int        `json:"stock"`
}

// Product converts the entry into a catalogue product, checking the fields
// the schema constrains.
func (e Entry) Product() (model.Product, error) {
	if strings.TrimSpace(e.ID) == "" {
		return model.Product{}, fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return model.Product{}, fmt.Errorf("product %s: name is required", e.ID)
	}
	if e.Price.IsNegative() {
		return model.Product{}, fmt.Errorf("product %s: price cannot be negative", e.ID)
	}
	if e.DiscountPrice != nil && e.DiscountPrice.IsNegative() {
		return model.Product{}, fmt.Errorf("product %s: discount price cannot be negative", e.ID)
	}

	p := model.Product{
		ID:            e.ID,
		Name:          e.Name,
		Price:         e.Price.Round(2),
		DiscountPrice: e.DiscountPrice,
		Category:      e.Category,
		Variants:      make([]model.ProductVariant, 0, len(e.Variants)),
	}
	for i, v := range e.Variants {
		if v.Stock < 0 {
			return model.Product{}, fmt.Errorf("product %s: variant %d: stock cannot be negative", e.ID, i)
		}
		id := uuid.NewSHA1(variantNamespace, []byte(e.ID+"\x00"+v.Size+"\x00"+v.Color))
		if v.ID != nil {
			id = *v.ID
		}
		p.Variants = append(p.Variants, model.ProductVariant{
			ID:        id,
			ProductID: e.ID,
			Size:      v.Size,
			Color:     v.Color,
			Stock:     v.Stock,
		})
	}
	return p, nil
}

// decode reads gzipped JSON lines from r. Blank lines are skipped.
func decode(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("%s:%d: invalid catalogue entry: %w", source, lineNo, err)
		}
		product, err := entry.Product()
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, lineNo, err)
		}
		products = append(products, product)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalogue %s: %w", source, err)
	}
	return products, nil
}
