package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is an import file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
	// ErrNoRows is returned when the file has a header but no data rows.
	ErrNoRows = errors.New("file contains no product rows")
	// ErrMissingHeader is returned when the file has no header row.
	ErrMissingHeader = errors.New("file has no header row")
)

// FormatFromFilename picks the format from the file extension. Names
// without an extension are read as CSV.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// Parse reads every data row of r in the given format.
func Parse(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseFile opens path and parses it according to its extension.
func ParseFile(path string) ([]Record, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return Parse(f, format)
}

// ParseCSV reads a header line followed by data lines. Blank lines are
// skipped and rows may be shorter or longer than the header.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	headers := normalizeHeaders(header)

	var records []Record
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if rec, ok := newRecord(line, headers, values); ok {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

// ParseXLSX reads the "Products" sheet, or the first sheet when there is no
// sheet of that name.
func ParseXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}
	headers := normalizeHeaders(rows[0])

	var records []Record
	for i, values := range rows[1:] {
		if rec, ok := newRecord(i+2, headers, values); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = normalizeHeader(h)
	}
	return headers
}
