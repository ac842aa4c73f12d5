package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/applebooks-export/internal/applebooks"
	"github.com/mrlokans/applebooks-export/internal/entities"
	"github.com/mrlokans/applebooks-export/internal/utils"
)

// MarkdownExporter writes one markdown document per annotated book.
type MarkdownExporter struct {
	OutputDir string
	Colors    utils.ColorTable
	Result    ExportResult
}

func NewMarkdownExporter(outputDir string, colors utils.ColorTable) *MarkdownExporter {
	return &MarkdownExporter{
		OutputDir: outputDir,
		Colors:    colors,
		Result:    ExportResult{},
	}
}

// RenderDocument renders the markdown document of a book. The output
// depends only on its arguments.
func RenderDocument(book entities.Book, annotations []entities.Annotation, colors utils.ColorTable) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "# %s\n\n", book.Title)
	if book.Author != "" {
		fmt.Fprintf(&builder, "**Author:** %s\n\n", book.Author)
	}
	if book.Publisher != "" {
		fmt.Fprintf(&builder, "**Publisher:** %s\n\n", book.Publisher)
	}
	if book.LastOpenDate != nil {
		fmt.Fprintf(&builder, "**Last opened:** %s\n\n", applebooks.FormatTimestamp(book.LastOpenDate))
	}

	builder.WriteString("---\n\n")
	builder.WriteString("## Highlights and Notes\n\n")

	for _, annotation := range annotations {
		renderAnnotation(&builder, annotation, colors)
	}

	return builder.String()
}

func renderAnnotation(builder *strings.Builder, annotation entities.Annotation, colors utils.ColorTable) {
	if annotation.HasSelectedText() {
		color := colors.Lookup(annotation.Color)
		fmt.Fprintf(builder, "### %s Highlight (%s)\n\n", color.Glyph, color.Name)
		text := strings.TrimSpace(annotation.SelectedText)
		fmt.Fprintf(builder, "> %s\n\n", strings.ReplaceAll(text, "\n", "\n> "))
	}

	if annotation.HasNote() {
		builder.WriteString("**📝 Note:**\n\n")
		fmt.Fprintf(builder, "%s\n\n", strings.TrimSpace(annotation.Note))
	}

	if annotation.CreatedAt != nil {
		fmt.Fprintf(builder, "*Created: %s*\n\n", applebooks.FormatTimestamp(annotation.CreatedAt))
	}

	builder.WriteString("---\n\n")
}

// fileNames hands out document names, adding a numeric suffix when two
// titles sanitize to the same name. Comparison ignores case because the
// default macOS filesystem does.
type fileNames map[string]int

func (n fileNames) next(title string) string {
	stem := utils.SanitizeTitle(title)
	key := strings.ToLower(stem)

	n[key]++
	if count := n[key]; count > 1 {
		// Sanitized stems never contain parentheses, so suffixed names
		// cannot collide with another title.
		stem = fmt.Sprintf("%s (%d)", stem, count)
	}

	return stem + ".md"
}

// Export writes a document for every book with at least one annotation.
// Books without annotations are skipped. Any filesystem error aborts the
// export.
func (exporter *MarkdownExporter) Export(groups []entities.BookAnnotations) (ExportResult, error) {
	// Reset result state for each export
	exporter.Result = ExportResult{}

	if err := os.MkdirAll(exporter.OutputDir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	names := fileNames{}

	for _, group := range groups {
		if len(group.Annotations) == 0 {
			exporter.Result.BooksSkipped++
			continue
		}

		outputPath := filepath.Join(exporter.OutputDir, names.next(group.Book.Title))
		content := RenderDocument(group.Book, group.Annotations, exporter.Colors)

		if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
			return ExportResult{}, fmt.Errorf("failed to write %s: %w", outputPath, err)
		}

		exporter.Result.BooksProcessed++
		exporter.Result.HighlightsProcessed += len(group.Annotations)
		exporter.Result.Files = append(exporter.Result.Files, outputPath)
	}

	return exporter.Result, nil
}
