package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterPadsRows(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Subject Name", "Score", "Grade"},
		Rows:    [][]string{{"Math", "80", "A"}, {"English"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Subject Name,Score,Grade\nMath,80,A\nEnglish,,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	doc := Document{
		Title:      "Student Report Card",
		Lines:      []string{"Student ID: 42", "Term: Term 1"},
		TableTitle: "Subjects:",
		Table: Dataset{
			Headers: []string{"Subject Name", "Score", "Grade"},
			Rows:    [][]string{{"Math", "N/A", "B"}},
		},
	}
	out, err := NewPDFExporter().RenderDocument(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterPaginatesLongTables(t *testing.T) {
	rows := make([][]string, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, []string{fmt.Sprintf("Subject %d", i), "50", "C"})
	}
	out, err := NewPDFExporter().RenderDocument(Document{
		Title: "Long",
		Table: Dataset{Headers: []string{"Subject Name", "Score", "Grade"}, Rows: rows},
	})
	require.NoError(t, err)
	assert.True(t, bytes.Count(out, []byte("/Type /Page\n")) >= 3 || bytes.Count(out, []byte("/Type /Page")) >= 4)
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().RenderDocument(Document{Title: "x"})
	assert.Error(t, err)
}

func TestFitTextShortensWithEllipsis(t *testing.T) {
	width := func(s string) float64 { return float64(len(s)) }

	assert.Equal(t, "Math", fitText("Math", 10, width))
	assert.Equal(t, "Inform...", fitText("Information Technology", 9, width))
	assert.Equal(t, "", fitText("Information", 2, width))
}

func TestPDFTextIsTranslatedToCoreFontEncoding(t *testing.T) {
	tr := gofpdf.New("P", "mm", "A4", "").UnicodeTranslatorFromDescriptor("")
	assert.Equal(t, "Jos\xe9", tr("José"))
}

func TestPDFExporterHandlesAccentsAndLongNames(t *testing.T) {
	out, err := NewPDFExporter().RenderDocument(Document{
		Title: "Student Report Card",
		Lines: []string{"Student ID: Zoë Müller"},
		Table: Dataset{
			Headers: []string{"Subject Name", "Score", "Grade"},
			Rows:    [][]string{{"Français " + strings.Repeat("Avancé ", 20), "87", "A"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
