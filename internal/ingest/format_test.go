package ingest

import (
	"strings"
	"testing"

	"github.com/angelmondragon/txledger/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAmount(t *testing.T, s string) money.Amount {
	t.Helper()
	a, err := money.Parse(s)
	require.NoError(t, err)
	return a
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"transactions.csv":     FormatCSV,
		"transactions":         FormatCSV,
		"events.jsonl":         FormatJSONL,
		"events.NDJSON":        FormatJSONL,
		"/tmp/in/events.json":  FormatJSONL,
		"archive.2024.csv.txt": FormatCSV,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectFormat(path), path)
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, FormatJSONL, Resolve(FormatAuto, "a.jsonl"))
	assert.Equal(t, FormatCSV, Resolve("", "a.csv"))
	assert.Equal(t, FormatCSV, Resolve(FormatCSV, "a.jsonl"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSONL ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(FormatCSV, strings.NewReader(""))
	require.NoError(t, err)
	assert.IsType(t, &CSVSource{}, src)

	src, err = NewSource(FormatJSONL, strings.NewReader(""))
	require.NoError(t, err)
	assert.IsType(t, &JSONSource{}, src)

	_, err = NewSource(FormatAuto, strings.NewReader(""))
	assert.Error(t, err)
}
