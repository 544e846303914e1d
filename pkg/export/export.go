package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer registered for a format name.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
