package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Events",
		Headers: []string{"slug", "title", "date"},
		Rows: [][]string{
			{"go-meetup", "Go Meetup", "2025-03-15"},
			{"short-row"},
			{"long", "Very long title that certainly does not fit inside a narrow column of the exported table", "2025-03-16", "extra"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.Equal(t, "slug,title,date\n"+
		"go-meetup,Go Meetup,2025-03-15\n"+
		"short-row,,\n"+
		"long,Very long title that certainly does not fit inside a narrow column of the exported table,2025-03-16\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("")
	require.NoError(t, err)
	require.Equal(t, "text/csv", r.ContentType())

	r, err = ForFormat("PDF")
	require.NoError(t, err)
	require.Equal(t, ".pdf", r.Extension())

	_, err = ForFormat("xlsx")
	require.Error(t, err)
}
