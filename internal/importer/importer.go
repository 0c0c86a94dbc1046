// Package importer turns spreadsheet files into question records.
package importer

import (
	"fmt"
	"io"
	"strings"
	"vocab-quiz/internal/bank"
	"vocab-quiz/internal/domain"
)

// Field is a canonical record field.
type Field string

const (
	FieldPrompt Field = "prompt"
	FieldAnswer Field = "answer"
	FieldImage  Field = "image"
	FieldLevel  Field = "level"
)

type fieldAliases struct {
	field   Field
	aliases []string
}

// columnAliases is matched in order against lower-cased, trimmed headers.
var columnAliases = []fieldAliases{
	{FieldPrompt, []string{"zh", "cn", "question", "prompt"}},
	{FieldAnswer, []string{"en", "answer", "ans"}},
	{FieldImage, []string{"img", "image"}},
	{FieldLevel, []string{"level"}},
}

// Result reports what an import produced.
type Result struct {
	Records []domain.QuestionRecord
	Rows    int
	Dropped int
}

// Import parses, maps and normalizes a spreadsheet. It fails when no row
// yields both a prompt and an answer.
func Import(filename string, r io.Reader) (*Result, error) {
	rows, err := ParseFile(filename, r)
	if err != nil {
		return nil, err
	}
	return FromRows(rows)
}

// FromRows maps and normalizes already-parsed rows.
func FromRows(rows []Row) (*Result, error) {
	records, dropped := bank.Normalize(MapRows(rows))
	if len(records) == 0 {
		return nil, domain.NewImportError(
			fmt.Sprintf("import failed: the first sheet must contain the columns %s (optional %s)",
				strings.Join(domain.RequiredImportColumns, ","),
				strings.Join(domain.OptionalImportColumns, ",")),
			nil,
		).WithContext("rows", len(rows))
	}
	return &Result{Records: records, Rows: len(rows), Dropped: dropped}, nil
}

// MapRows resolves each row's columns through the alias table. Missing
// columns become empty strings and a missing level becomes 1.
func MapRows(rows []Row) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		idx := indexRow(row)
		rec := domain.RawRecord{
			Prompt:   strings.TrimSpace(lookup(idx, FieldPrompt)),
			Answer:   strings.TrimSpace(lookup(idx, FieldAnswer)),
			ImageURL: strings.TrimSpace(lookup(idx, FieldImage)),
			Level:    1,
		}
		if lv := strings.TrimSpace(lookup(idx, FieldLevel)); lv != "" {
			rec.Level = lv
		}
		out = append(out, rec)
	}
	return out
}

// indexRow keys the cells by lower-cased header. When headers collide the
// leftmost non-empty cell wins.
func indexRow(row Row) map[string]string {
	idx := make(map[string]string, len(row))
	for _, c := range row {
		key := strings.ToLower(strings.TrimSpace(c.Header))
		if existing, ok := idx[key]; ok && strings.TrimSpace(existing) != "" {
			continue
		}
		idx[key] = c.Value
	}
	return idx
}

func lookup(idx map[string]string, field Field) string {
	for _, fa := range columnAliases {
		if fa.field != field {
			continue
		}
		for _, alias := range fa.aliases {
			if v := idx[alias]; strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	return ""
}
