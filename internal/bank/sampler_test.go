package bank

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffle_IsPermutationAndCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}

	out := Shuffle(rng, in)

	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, in)
	assert.Empty(t, Shuffle(rng, []int{}))
}

func TestShuffle_Uniformity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	counts := map[string]int{}
	const trials = 60000
	for i := 0; i < trials; i++ {
		counts[fmt.Sprint(Shuffle(rng, []int{1, 2, 3}))]++
	}

	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, trials/6, n, trials/60, "permutation %s", perm)
	}
}

func TestSampleOptions(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := []string{"cat", "dog", "bird", "fish", "cow", "pig"}

	for i := 0; i < 200; i++ {
		opts := SampleOptions(rng, "cat", pool, DefaultOptionCount)

		require.Len(t, opts, DefaultOptionCount)
		hits := 0
		seen := map[string]bool{}
		for _, o := range opts {
			if o == "cat" {
				hits++
			}
			key := strings.ToLower(o)
			assert.False(t, seen[key], "duplicate option %q", o)
			seen[key] = true
		}
		assert.Equal(t, 1, hits)
	}
}

func TestSampleOptions_ExcludesCaseVariantsOfAnswer(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pool := []string{"Cat", "CAT", "dog", "dog", "bird"}

	opts := SampleOptions(rng, "cat", pool, DefaultOptionCount)

	assert.ElementsMatch(t, []string{"cat", "dog", "bird"}, opts)
}

func TestSampleOptions_ShortPool(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	assert.Equal(t, []string{"cat"}, SampleOptions(rng, "cat", nil, DefaultOptionCount))
	assert.ElementsMatch(t, []string{"cat", "dog"}, SampleOptions(rng, "cat", []string{"cat", "dog"}, DefaultOptionCount))
}

func TestSampleOptions_AnswerPositionVaries(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pool := []string{"a", "b", "c", "d", "e"}
	positions := map[int]int{}

	for i := 0; i < 4000; i++ {
		opts := SampleOptions(rng, "a", pool, DefaultOptionCount)
		for j, o := range opts {
			if o == "a" {
				positions[j]++
			}
		}
	}

	require.Len(t, positions, DefaultOptionCount)
	for pos, n := range positions {
		assert.InDelta(t, 1000, n, 150, "position %d", pos)
	}
}
