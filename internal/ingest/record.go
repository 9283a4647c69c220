// Package ingest turns structured product files into catalog drafts.
package ingest

import (
	"strings"
)

// Column headers of a product import file. Matching is case-insensitive.
const (
	ColName          = "Name"
	ColDescription   = "Description"
	ColProductDetail = "ProductDetail"
	ColCategory      = "Category"
	ColColor         = "Color"
	ColSize          = "Size"
	ColTags          = "Tags"
	ColOriginalPrice = "OriginalPrice"
	ColDiscountPrice = "DiscountPrice"
	ColStock         = "Stock"
	ColImages        = "Images"
)

// Columns lists the headers in template order.
var Columns = []string{
	ColName, ColDescription, ColProductDetail, ColCategory, ColColor, ColSize,
	ColTags, ColOriginalPrice, ColDiscountPrice, ColStock, ColImages,
}

// Record is one data row keyed by normalized header. Row is the 1-based line
// number in the source file, counting the header as line 1.
type Record struct {
	Row    int
	Fields map[string]string
}

// Get returns the value of column, or "" when the file has no such column.
func (r Record) Get(column string) string {
	return r.Fields[normalizeHeader(column)]
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func newRecord(row int, headers, values []string) (Record, bool) {
	rec := Record{Row: row, Fields: make(map[string]string, len(headers))}
	blank := true
	for i, h := range headers {
		if h == "" || i >= len(values) {
			continue
		}
		v := strings.TrimSpace(values[i])
		if v != "" {
			blank = false
		}
		rec.Fields[h] = v
	}
	return rec, !blank
}

// ColumnForField maps a product JSON field path such as "images[0].url" to
// the import column it came from. Unknown fields are returned unchanged.
func ColumnForField(field string) string {
	name := field
	if i := strings.IndexAny(name, "[."); i >= 0 {
		name = name[:i]
	}
	for _, col := range Columns {
		if strings.EqualFold(col, name) {
			return col
		}
	}
	return field
}
