package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/catalog"

	"github.com/shopspring/decimal"
)

// generateSampleCatalog writes a small catalogue for local development.
// Run it from the repository root, then import it with cmd/seed.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	sizes := []string{"S", "M", "L", "XL"}
	discount := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	entries := []catalog.Entry{
		{ID: "TSH-001", Name: "Basic Cotton Tee", Price: decimal.RequireFromString("19.90"), Category: "t-shirts",
			Variants: variants(sizes, []string{"White", "Black", "Navy"}, 25)},
		{ID: "TSH-002", Name: "Striped Linen Tee", Price: decimal.RequireFromString("29.00"), DiscountPrice: discount("24.50"), Category: "t-shirts",
			Variants: variants(sizes, []string{"Sand", "Olive"}, 12)},
		{ID: "JNS-001", Name: "Slim Fit Jeans", Price: decimal.RequireFromString("59.99"), Category: "trousers",
			Variants: variants([]string{"30", "32", "34", "36"}, []string{"Indigo", "Black"}, 8)},
		{ID: "HDY-001", Name: "Fleece Hoodie", Price: decimal.RequireFromString("49.00"), DiscountPrice: discount("39.00"), Category: "sweatshirts",
			Variants: variants(sizes, []string{"Grey"}, 5)},
		{ID: "CAP-001", Name: "Canvas Cap", Price: decimal.RequireFromString("15.00"), Category: "accessories",
			Variants: variants([]string{"ONE"}, []string{"Beige", "Black"}, 40)},
		{ID: "SCK-001", Name: "Wool Socks", Price: decimal.RequireFromString("9.50"), Category: "accessories",
			Variants: variants([]string{"39-42", "43-46"}, []string{"Charcoal"}, 0)},
	}

	filePath := filepath.Join(dataDir, "catalog.jsonl.gz")
	if err := createCatalogFile(filePath, entries); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(entries))
	fmt.Println("\nSCK-001 is listed with zero stock so checkout rejections can be tried out.")
}

func variants(sizes, colors []string, stock int) []catalog.VariantEntry {
	out := make([]catalog.VariantEntry, 0, len(sizes)*len(colors))
	for _, size := range sizes {
		for _, color := range colors {
			out = append(out, catalog.VariantEntry{Size: size, Color: color, Stock: stock})
		}
	}
	return out
}

func createCatalogFile(filePath string, entries []catalog.Entry) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to write product %s: %w", entry.ID, err)
		}
	}

	return nil
}
