package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/daffodeal/marketplace/internal/domain"
)

// TemplateSheet is the sheet name of generated spreadsheets.
const TemplateSheet = "Products"

var (
	sampleItems = []struct{ name, category string }{
		{"Linen Shirt", "Apparel"},
		{"Denim Jacket", "Apparel"},
		{"Wool Scarf", "Accessories"},
		{"Leather Belt", "Accessories"},
		{"Ceramic Mug", "Kitchen"},
		{"Cast Iron Pan", "Kitchen"},
		{"Desk Lamp", "Home"},
		{"Cotton Throw", "Home"},
		{"Trail Sneakers", "Footwear"},
		{"Canvas Backpack", "Bags"},
	}
	sampleColors = []string{"Black", "White", "Navy", "Olive", "Sand", "Burgundy"}
	sampleSizes  = []string{"S", "M", "L", "XL", ""}
	sampleTags   = []string{"new", "summer", "bestseller", "eco", "gift"}
)

// SampleRows returns n deterministic product rows in Columns order. The same
// seed always yields the same rows.
func SampleRows(n int, seed uint64) [][]string {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) // #nosec G404 -- sample data only
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		item := sampleItems[rng.IntN(len(sampleItems))]
		color := sampleColors[rng.IntN(len(sampleColors))]

		// Prices in cents: original 10.00..199.99, discount 70..100% of it.
		original := 1000 + rng.IntN(19000)
		discount := original * (70 + rng.IntN(31)) / 100

		images := make([]string, 1+rng.IntN(3))
		for j := range images {
			images[j] = fmt.Sprintf("https://images.daffodeal.io/samples/%d-%d.jpg", i+1, j+1)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s %s", color, item.name),
			fmt.Sprintf("%s in %s, sample item %d", item.name, strings.ToLower(color), i+1),
			"",
			item.category,
			color,
			sampleSizes[rng.IntN(len(sampleSizes))],
			sampleTags[rng.IntN(len(sampleTags))],
			formatCents(original),
			formatCents(discount),
			strconv.Itoa(rng.IntN(200)),
			strings.Join(images, ", "),
		})
	}
	return rows
}

func formatCents(v int) string {
	return domain.FromMinorUnits(int64(v)).StringFixed(domain.MinorUnitExp)
}

// WriteTemplate writes the Columns header followed by rows in format.
func WriteTemplate(w io.Writer, format Format, rows [][]string) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("write CSV rows: %w", err)
		}
		return nil
	case FormatXLSX:
		return writeXLSX(w, rows)
	default:
		return ErrUnsupportedFormat
	}
}

func writeXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	for i, values := range append([][]string{Columns}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(TemplateSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}
