package bank

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"vocab-quiz/internal/domain"
)

// Normalize trims, validates and dedupes raw records. Records without a
// prompt or answer are dropped; later duplicates of a case-insensitive
// prompt/answer pair are dropped. It returns the surviving records in
// first-seen order and the number of dropped records.
func Normalize(raw []domain.RawRecord) ([]domain.QuestionRecord, int) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]domain.QuestionRecord, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		prompt := strings.TrimSpace(r.Prompt)
		answer := strings.TrimSpace(r.Answer)
		if prompt == "" || answer == "" {
			dropped++
			continue
		}
		key := domain.RecordKey(prompt, answer)
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, domain.QuestionRecord{
			Prompt:   prompt,
			Answer:   answer,
			ImageURL: strings.TrimSpace(r.ImageURL),
			Level:    CoerceLevel(r.Level),
		})
	}
	return out, dropped
}

// CoerceLevel turns a loosely-typed level into a positive integer.
// Anything non-numeric or below 1 becomes 1; fractions are truncated.
func CoerceLevel(v interface{}) int {
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 1
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ToRaw converts normalized records back to raw form, e.g. to re-run them
// through Normalize after a merge.
func ToRaw(records []domain.QuestionRecord) []domain.RawRecord {
	out := make([]domain.RawRecord, len(records))
	for i, r := range records {
		out[i] = domain.RawRecord{Prompt: r.Prompt, Answer: r.Answer, ImageURL: r.ImageURL, Level: r.Level}
	}
	return out
}

// FilterByLevels keeps the records whose level is selected.
func FilterByLevels(records []domain.QuestionRecord, levels []int) []domain.QuestionRecord {
	selected := make(map[int]struct{}, len(levels))
	for _, lv := range levels {
		selected[lv] = struct{}{}
	}
	out := make([]domain.QuestionRecord, 0, len(records))
	for _, r := range records {
		if _, ok := selected[r.Level]; ok {
			out = append(out, r)
		}
	}
	return out
}

// AnswerPool lists the answers of records in order.
func AnswerPool(records []domain.QuestionRecord) []string {
	pool := make([]string, len(records))
	for i, r := range records {
		pool[i] = r.Answer
	}
	return pool
}

// Levels returns the distinct levels present, ascending.
func Levels(records []domain.QuestionRecord) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range records {
		if _, ok := seen[r.Level]; ok {
			continue
		}
		seen[r.Level] = struct{}{}
		out = append(out, r.Level)
	}
	sort.Ints(out)
	return out
}
