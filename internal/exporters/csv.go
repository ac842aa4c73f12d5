package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/applebooks-export/internal/applebooks"
	"github.com/mrlokans/applebooks-export/internal/entities"
	"github.com/mrlokans/applebooks-export/internal/utils"
)

// CSVHeader is the header row of the tabular export.
var CSVHeader = []string{
	"Book Title",
	"Author",
	"Highlighted Text",
	"Note",
	"Color",
	"Created At",
	"Modified At",
}

// CSVExporter writes every annotation as one row of a single CSV file.
type CSVExporter struct {
	OutputFile string
	Colors     utils.ColorTable
	Result     ExportResult
}

func NewCSVExporter(outputFile string, colors utils.ColorTable) *CSVExporter {
	return &CSVExporter{
		OutputFile: outputFile,
		Colors:     colors,
		Result:     ExportResult{},
	}
}

// Record renders the CSV row of an annotation.
func Record(annotation entities.Annotation, book entities.BookRef, colors utils.ColorTable) []string {
	return []string{
		book.Title,
		book.Author,
		annotation.SelectedText,
		annotation.Note,
		colors.Lookup(annotation.Color).Name,
		applebooks.FormatTimestamp(annotation.CreatedAt),
		applebooks.FormatTimestamp(annotation.ModifiedAt),
	}
}

// Write writes the header and one row per annotation to w. Annotations of
// books unknown to books are written with the unknown book placeholder.
func (exporter *CSVExporter) Write(w io.Writer, annotations []entities.Annotation, books BookResolver) (ExportResult, error) {
	result := ExportResult{}
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return result, fmt.Errorf("failed to write header: %w", err)
	}

	seen := make(map[string]struct{})
	for _, annotation := range annotations {
		if err := writer.Write(Record(annotation, books.Resolve(annotation.AssetID), exporter.Colors)); err != nil {
			return result, fmt.Errorf("failed to write row: %w", err)
		}
		result.HighlightsProcessed++
		if _, ok := seen[annotation.AssetID]; !ok {
			seen[annotation.AssetID] = struct{}{}
			result.BooksProcessed++
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return result, fmt.Errorf("failed to flush csv: %w", err)
	}

	return result, nil
}

// Export writes the CSV file, creating its parent directory if needed.
func (exporter *CSVExporter) Export(annotations []entities.Annotation, books BookResolver) (ExportResult, error) {
	// Reset result state for each export
	exporter.Result = ExportResult{}

	if dir := filepath.Dir(exporter.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ExportResult{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(exporter.OutputFile)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create %s: %w", exporter.OutputFile, err)
	}
	defer file.Close()

	result, err := exporter.Write(file, annotations, books)
	if err != nil {
		return ExportResult{}, err
	}

	if err := file.Close(); err != nil {
		return ExportResult{}, fmt.Errorf("failed to close %s: %w", exporter.OutputFile, err)
	}

	result.Files = []string{exporter.OutputFile}
	exporter.Result = result
	return result, nil
}
