package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapFilter(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(n int) int { return n * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	odd := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 1 })
	assert.Equal(t, []int{1, 3}, odd)
}

func TestDateConversions(t *testing.T) {
	assert.Equal(t, "25-12-2025", ToDisplayDate("2025-12-25"))
	assert.Equal(t, "garbage", ToDisplayDate("garbage"))

	iso, err := ToISODate("25-12-2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-25", iso)

	// canonical input passes through
	iso, err = ToISODate("2025-12-25")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-25", iso)

	iso, err = ToISODate("  ")
	require.NoError(t, err)
	assert.Equal(t, "", iso)

	_, err = ToISODate("12/25/2025")
	assert.Error(t, err)
}

func TestListRoundTrip(t *testing.T) {
	joined := JoinList([]string{"a", "b", "c"})
	assert.Equal(t, "a;b;c", joined)
	assert.Equal(t, []string{"a", "b", "c"}, SplitList(joined))
	assert.Empty(t, SplitList(" ; ;"))
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(20)
	require.NoError(t, err)
	assert.Len(t, s, 20)

	other, err := GenerateRandomString(20)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
