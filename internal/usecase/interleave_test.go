package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"CrisisMonitor/internal/domain"
)

func entriesFor(source string, n int) []domain.Entry {
	out := make([]domain.Entry, n)
	for i := range out {
		out[i] = domain.Entry{
			Title:    fmt.Sprintf("%s%d", source, i),
			Link:     fmt.Sprintf("https://%s.example.org/%d", source, i),
			SourceID: source,
		}
	}
	return out
}

func titles(entries []domain.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestInterleaveRoundRobin(t *testing.T) {
	t.Parallel()

	merged := Interleave([][]domain.Entry{entriesFor("a", 5), entriesFor("b", 5), entriesFor("c", 5)})

	assert.Len(t, merged, 15)
	assert.Equal(t, []string{"a0", "b0", "c0", "a1", "b1", "c1"}, titles(merged[:6]))

	counts := map[string]int{}
	for _, e := range merged[:6] {
		counts[e.SourceID]++
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 2, "c": 2}, counts)
}

func TestInterleaveUnevenSources(t *testing.T) {
	t.Parallel()

	merged := Interleave([][]domain.Entry{entriesFor("a", 3), nil, entriesFor("c", 1)})
	assert.Equal(t, []string{"a0", "c0", "a1", "a2"}, titles(merged))
}

func TestInterleaveEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Interleave(nil))
	assert.Empty(t, Interleave([][]domain.Entry{nil, {}}))
}
