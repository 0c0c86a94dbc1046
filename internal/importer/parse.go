package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"vocab-quiz/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Cell is one header/value pair of a spreadsheet row.
type Cell struct {
	Header string
	Value  string
}

// Row holds the cells of one spreadsheet line in column order.
type Row []Cell

// Format identifies a supported file layout.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// DetectFormat picks the parser from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xls":
		return "", domain.NewImportError("legacy .xls workbooks are not supported, save the file as .xlsx or .csv", nil)
	default:
		return "", domain.NewImportError(fmt.Sprintf("unsupported file type %q, use .csv or .xlsx", filepath.Ext(filename)), nil)
	}
}

// ParseFile reads the first sheet of the file into header-keyed rows.
func ParseFile(filename string, r io.Reader) ([]Row, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return parseXLSX(r)
	case FormatCSV:
		return parseDelimited(r, ',')
	case FormatTSV:
		return parseDelimited(r, '\t')
	default:
		return parseJSON(r)
	}
}

func parseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewImportError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewImportError("workbook has no sheets", nil)
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.NewImportError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	return toRows(cells), nil
}

func parseDelimited(r io.Reader, comma rune) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewImportError("failed to read file", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM from spreadsheet exports

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	cells, err := reader.ReadAll()
	if err != nil {
		return nil, domain.NewImportError("failed to parse delimited file", err)
	}
	return toRows(cells), nil
}

// parseJSON reads an array of flat objects, keeping each object's keys in
// document order.
func parseJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var rows []Row
	for dec.More() {
		row, err := parseJSONObject(dec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseJSONObject(dec *json.Decoder) (Row, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var row Row
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, jsonImportError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, jsonImportError(fmt.Errorf("unexpected key %v", tok))
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, jsonImportError(err)
		}
		cell := Cell{Header: key}
		if v != nil {
			cell.Value = fmt.Sprint(v)
		}
		row = append(row, cell)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return row, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return jsonImportError(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return jsonImportError(fmt.Errorf("expected %q, got %v", want, tok))
	}
	return nil
}

func jsonImportError(err error) error {
	return domain.NewImportError("failed to parse JSON, expected an array of objects", err)
}

// toRows treats the first line as the header. Short lines are padded with
// empty cells; cells under an empty header are ignored.
func toRows(cells [][]string) []Row {
	if len(cells) == 0 {
		return nil
	}
	header := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(Row, 0, len(header))
		empty := true
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			v := ""
			if i < len(line) {
				v = line[i]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			row = append(row, Cell{Header: h, Value: v})
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}
