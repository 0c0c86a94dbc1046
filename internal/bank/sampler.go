package bank

import (
	"math/rand"
	"strings"
)

// DefaultOptionCount is the number of choices shown per question.
const DefaultOptionCount = 4

// Shuffle returns a uniformly shuffled copy of items (Fisher–Yates).
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SampleOptions builds the choices for one question: up to count-1
// distractors drawn from pool plus the correct answer, in random order.
// Entries equal to the correct answer (ignoring case) never become
// distractors, and distractors are distinct from each other. When the
// pool is short the result is shorter; it always holds at least the
// correct answer.
func SampleOptions(rng *rand.Rand, correct string, pool []string, count int) []string {
	if count < 1 {
		count = 1
	}
	correctKey := strings.ToLower(correct)

	others := make([]string, 0, len(pool))
	for _, w := range pool {
		if strings.ToLower(w) != correctKey {
			others = append(others, w)
		}
	}
	others = Shuffle(rng, others)

	need := count - 1
	options := make([]string, 0, count)
	options = append(options, correct)
	taken := map[string]struct{}{correctKey: {}}
	for _, w := range others {
		if len(options)-1 >= need {
			break
		}
		key := strings.ToLower(w)
		if _, dup := taken[key]; dup {
			continue
		}
		taken[key] = struct{}{}
		options = append(options, w)
	}
	return Shuffle(rng, options)
}
