package bank

import (
	"encoding/json"
	"math"
	"testing"
	"vocab-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	raw := []domain.RawRecord{
		{Prompt: "  貓 ", Answer: " cat ", ImageURL: " https://img/cat.png ", Level: "2"},
		{Prompt: "狗", Answer: "", Level: 1},
		{Prompt: "", Answer: "bird", Level: 1},
		{Prompt: "貓", Answer: "CAT", Level: 3},
		{Prompt: "魚", Answer: "fish", Level: nil},
	}

	got, dropped := Normalize(raw)

	assert.Equal(t, 3, dropped)
	assert.Equal(t, []domain.QuestionRecord{
		{Prompt: "貓", Answer: "cat", ImageURL: "https://img/cat.png", Level: 2},
		{Prompt: "魚", Answer: "fish", Level: 1},
	}, got)
}

func TestNormalize_Empty(t *testing.T) {
	got, dropped := Normalize(nil)
	assert.Empty(t, got)
	assert.Zero(t, dropped)
}

func TestCoerceLevel(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
	}{
		{"nil", nil, 1},
		{"int", 3, 3},
		{"int64", int64(4), 4},
		{"float truncates", 2.9, 2},
		{"numeric string", " 5 ", 5},
		{"fraction string", "2.5", 2},
		{"non-numeric string", "abc", 1},
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"NaN", math.NaN(), 1},
		{"json number", json.Number("7"), 7},
		{"bool", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceLevel(tt.in))
		})
	}
}

func TestFilterByLevels(t *testing.T) {
	records := []domain.QuestionRecord{
		{Prompt: "a", Answer: "a", Level: 1},
		{Prompt: "b", Answer: "b", Level: 2},
		{Prompt: "c", Answer: "c", Level: 3},
	}

	assert.Equal(t, records[:2], FilterByLevels(records, []int{1, 2}))
	assert.Empty(t, FilterByLevels(records, []int{9}))
	assert.Empty(t, FilterByLevels(records, nil))
}

func TestLevelsAndAnswerPool(t *testing.T) {
	records := []domain.QuestionRecord{
		{Prompt: "a", Answer: "x", Level: 3},
		{Prompt: "b", Answer: "y", Level: 1},
		{Prompt: "c", Answer: "z", Level: 3},
	}

	assert.Equal(t, []int{1, 3}, Levels(records))
	assert.Equal(t, []string{"x", "y", "z"}, AnswerPool(records))
}

func TestDefaultBank(t *testing.T) {
	records := DefaultBank()

	require.Len(t, records, 35)
	assert.Equal(t, []int{1, 2}, Levels(records))
	for _, r := range records {
		assert.NoError(t, r.Validate())
	}

	// Callers get their own copy.
	raw := DefaultRaw()
	raw[0].Prompt = "changed"
	assert.Equal(t, "一(個)", DefaultRaw()[0].Prompt)
}

func TestToRaw_RoundTripsThroughNormalize(t *testing.T) {
	records := DefaultBank()
	again, dropped := Normalize(ToRaw(records))
	assert.Zero(t, dropped)
	assert.Equal(t, records, again)
}
