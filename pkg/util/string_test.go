package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héł", Truncate("héłło", 3))
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{}, ParseList(""))
	assert.Equal(t, []string{"AI", "growth"}, ParseList(`["AI", "growth",, "ai"]`))
	assert.Equal(t, []string{"B2B", "SaaS"}, ParseList("B2B\n 'SaaS'\nb2b"))
}

func TestUniqueFold(t *testing.T) {
	assert.Equal(t, []string{"Go", "rust"}, UniqueFold([]string{"Go", "rust", "GO"}))
	assert.Empty(t, UniqueFold(nil))
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, CleanList([]string{" a ", "", "  ", "b"}))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "post", Plural(1, "post", "posts"))
	assert.Equal(t, "posts", Plural(0, "post", "posts"))
}
