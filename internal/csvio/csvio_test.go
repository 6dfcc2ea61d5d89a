package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	in := "id,name,tags\nu1,Avery,a;b\nu2,Sam,\n"
	rows, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"id": "u1", "name": "Avery", "tags": "a;b"}, rows[0])
	assert.Equal(t, "", rows[1]["tags"])
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	// header only, no data rows
	_, err = Parse(strings.NewReader("id,name\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestWriteRoundTrip(t *testing.T) {
	headers := []string{"id", "name", "tags"}
	rows := []Row{
		{"id": "p1", "name": "Rollout", "tags": "infra;q1"},
		{"id": "p2", "name": "Audit"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, headers, rows))

	back, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "infra;q1", back[0]["tags"])
	assert.Equal(t, "", back[1]["tags"])
}
