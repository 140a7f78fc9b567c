package commands

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

func TestPageSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		offset, count, total uint64
		want                 string
	}{
		{"first page", 0, 10, 135, "Showing 1-10 of 135"},
		{"middle page", 10, 10, 135, "Showing 11-20 of 135"},
		{"past the end", 200, 0, 135, "Showing 0 of 135"},
		{"empty collection", 0, 0, 0, "Showing 0 of 0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pageSummary(tt.offset, tt.count, tt.total))
		})
	}
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	name := "leads"
	empty := ""
	limit := uint64(25)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	assert.Equal(t, "leads", formatOptional(&name))
	assert.Equal(t, constants.NotAvailable, formatOptional(&empty))
	assert.Equal(t, constants.NotAvailable, formatOptional(nil))
	assert.Equal(t, "2026-03-04 05:06:07", formatTime(at))
	assert.Equal(t, constants.NotAvailable, formatTime(time.Time{}))
	assert.Equal(t, constants.NotAvailable, formatOptionalTime(nil))
	assert.Equal(t, "25", formatLimit(&limit))
	assert.Equal(t, constants.NotAvailable, formatLimit(nil))

	short := strings.Repeat("a", maxCellWidth)
	assert.Equal(t, short, truncate(short))

	long := truncate(strings.Repeat("b", maxCellWidth+1))
	assert.Len(t, long, maxCellWidth)
	assert.True(t, strings.HasSuffix(long, truncateSuffix))
}

func TestDecodeDocument(t *testing.T) {
	t.Parallel()

	doc, err := decodeDocument([]byte(`[{"a":1}]`))
	require.NoError(t, err)
	assert.Len(t, doc, 1)

	doc, err = decodeDocument([]byte("a: 1\nb: two\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, doc)

	_, err = decodeDocument([]byte("{not: [valid"))
	require.ErrorIs(t, err, apify.ErrParse)
}

func TestOutputRenderer(t *testing.T) {
	t.Parallel()

	tableRenderer := newRenderer(func(w io.Writer, _ map[string]int) error {
		return propertyTable(w, [][]string{{"count", "3"}})
	})

	var buf bytes.Buffer

	require.NoError(t, tableRenderer.Render(&buf, map[string]int{"count": 3}, OutputFormatJSON))
	assert.JSONEq(t, `{"count":3}`, buf.String())

	buf.Reset()
	require.NoError(t, tableRenderer.Render(&buf, map[string]int{"count": 3}, OutputFormatYAML))
	assert.Equal(t, "count: 3\n", buf.String())

	buf.Reset()
	require.NoError(t, tableRenderer.Render(&buf, map[string]int{"count": 3}, ""))
	assert.Contains(t, buf.String(), "count")

	err := tableRenderer.Render(&buf, map[string]int{}, "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutputFormat)
}
