package bank

import (
	"vocab-quiz/internal/domain"
)

var defaultBank = []domain.RawRecord{
	{Prompt: "一(個)", Answer: "one", Level: 1},
	{Prompt: "一些", Answer: "some", Level: 1},
	{Prompt: "許多", Answer: "many", Level: 1},
	{Prompt: "能夠…的", Answer: "can", Level: 1},
	{Prompt: "關於", Answer: "about", Level: 1},
	{Prompt: "在…上方", Answer: "above", Level: 1},
	{Prompt: "在國外", Answer: "abroad", Level: 2},
	{Prompt: "在…對面", Answer: "across", Level: 2},
	{Prompt: "女演員", Answer: "actress", Level: 1},
	{Prompt: "害怕的", Answer: "afraid", Level: 1},
	{Prompt: "在…之後", Answer: "after", Level: 1},
	{Prompt: "下午", Answer: "afternoon", Level: 1},
	{Prompt: "再一次", Answer: "again", Level: 1},
	{Prompt: "年齡", Answer: "age", Level: 1},
	{Prompt: "以前", Answer: "ago", Level: 1},
	{Prompt: "同意", Answer: "agree", Level: 2},
	{Prompt: "在前方", Answer: "ahead", Level: 2},
	{Prompt: "空氣", Answer: "air", Level: 1},
	{Prompt: "飛機", Answer: "airplane", Level: 1},
	{Prompt: "機場", Answer: "airport", Level: 1},
	{Prompt: "全部的", Answer: "all", Level: 1},
	{Prompt: "幾乎", Answer: "almost", Level: 2},
	{Prompt: "沿著", Answer: "along", Level: 2},
	{Prompt: "已經", Answer: "already", Level: 2},
	{Prompt: "也", Answer: "also", Level: 1},
	{Prompt: "總是", Answer: "always", Level: 1},
	{Prompt: "上午", Answer: "morning", Level: 1},
	{Prompt: "美國", Answer: "America", Level: 1},
	{Prompt: "美國人(的)", Answer: "American", Level: 1},
	{Prompt: "和", Answer: "and", Level: 1},
	{Prompt: "生氣的", Answer: "angry", Level: 1},
	{Prompt: "動物", Answer: "animal", Level: 1},
	{Prompt: "另一個的", Answer: "another", Level: 1},
	{Prompt: "回答", Answer: "answer", Level: 1},
	{Prompt: "螞蟻", Answer: "ant", Level: 1},
}

// DefaultRaw returns a copy of the built-in starter bank.
func DefaultRaw() []domain.RawRecord {
	out := make([]domain.RawRecord, len(defaultBank))
	copy(out, defaultBank)
	return out
}

// DefaultBank returns the built-in starter bank, normalized.
func DefaultBank() []domain.QuestionRecord {
	records, _ := Normalize(defaultBank)
	return records
}
