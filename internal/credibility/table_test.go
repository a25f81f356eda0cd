package credibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	table, err := New(DefaultEntries(), DefaultScore)
	require.NoError(t, err)

	score, known := table.Lookup("Reuters")
	assert.True(t, known)
	assert.Equal(t, 0.93, score)

	score, known = table.Lookup("  Financial   Times ")
	assert.True(t, known)
	assert.Equal(t, 0.90, score)

	score, known = table.Lookup("some blog")
	assert.False(t, known)
	assert.Equal(t, DefaultScore, score)
}

func TestNewCopiesEntries(t *testing.T) {
	t.Parallel()

	entries := map[string]float64{"cnbc": 0.85}
	table, err := New(entries, 0.4)
	require.NoError(t, err)

	entries["cnbc"] = 0.1
	entries["wsj"] = 0.9

	score, _ := table.Lookup("cnbc")
	assert.Equal(t, 0.85, score)

	score, known := table.Lookup("wsj")
	assert.False(t, known)
	assert.Equal(t, 0.4, score)
	assert.Equal(t, 0.4, table.Default())
}

func TestNewRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := New(map[string]float64{"x": 1.2}, 0.5)
	require.Error(t, err)

	_, err = New(nil, -0.1)
	require.Error(t, err)

	_, err = New(map[string]float64{"  ": 0.3}, 0.5)
	require.Error(t, err)
}

func TestNilTable(t *testing.T) {
	t.Parallel()

	var table *Table
	score, known := table.Lookup("bloomberg")
	assert.False(t, known)
	assert.Equal(t, DefaultScore, score)
}
