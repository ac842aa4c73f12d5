package exporters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/applebooks-export/internal/entities"
	"github.com/mrlokans/applebooks-export/internal/utils"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// --- RenderDocument Tests ---

func TestRenderDocument(t *testing.T) {
	colors := utils.DefaultColorTable()

	t.Run("renders header and highlight", func(t *testing.T) {
		book := entities.Book{AssetID: "b1", Title: "Test: Book/Name", Author: "Jane Doe"}
		annotations := []entities.Annotation{
			{AssetID: "b1", SelectedText: "hello", Color: intPtr(1), CreatedAt: floatPtr(0)},
		}

		doc := RenderDocument(book, annotations, colors)

		expected := "# Test: Book/Name\n\n" +
			"**Author:** Jane Doe\n\n" +
			"---\n\n" +
			"## Highlights and Notes\n\n" +
			"### 🟢 Highlight (Green)\n\n" +
			"> hello\n\n" +
			"*Created: 2001-01-01 00:00:00*\n\n" +
			"---\n\n"
		assert.Equal(t, expected, doc)
	})

	t.Run("includes optional metadata when present", func(t *testing.T) {
		book := entities.Book{
			Title:        "Book",
			Author:       "Author",
			Publisher:    "Press",
			LastOpenDate: floatPtr(86400),
		}

		doc := RenderDocument(book, nil, colors)

		assert.Contains(t, doc, "**Publisher:** Press\n")
		assert.Contains(t, doc, "**Last opened:** 2001-01-02 00:00:00\n")
	})

	t.Run("omits missing metadata", func(t *testing.T) {
		doc := RenderDocument(entities.Book{Title: "Bare"}, nil, colors)

		assert.NotContains(t, doc, "**Author:**")
		assert.NotContains(t, doc, "**Publisher:**")
		assert.NotContains(t, doc, "**Last opened:**")
	})

	t.Run("renders note with highlight", func(t *testing.T) {
		annotations := []entities.Annotation{
			{SelectedText: "passage", Note: "  my thought  ", Color: intPtr(0)},
		}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.Contains(t, doc, "### 🟡 Highlight (Yellow)\n\n> passage\n\n**📝 Note:**\n\nmy thought\n\n---\n\n")
	})

	t.Run("note-only annotation has no highlight heading", func(t *testing.T) {
		annotations := []entities.Annotation{{Note: "just a note"}}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.NotContains(t, doc, "Highlight (")
		assert.NotContains(t, doc, "> ")
		assert.Contains(t, doc, "**📝 Note:**\n\njust a note\n\n")
	})

	t.Run("empty annotation still gets a separator", func(t *testing.T) {
		annotations := []entities.Annotation{{SelectedText: "   "}}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.NotContains(t, doc, "Highlight (")
		assert.NotContains(t, doc, "Note:")
		assert.True(t, strings.HasSuffix(doc, "## Highlights and Notes\n\n---\n\n"))
	})

	t.Run("quotes every line of a multi-line highlight", func(t *testing.T) {
		annotations := []entities.Annotation{{SelectedText: "line one\nline two", Color: intPtr(2)}}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.Contains(t, doc, "> line one\n> line two\n\n")
	})

	t.Run("unknown color uses fallback", func(t *testing.T) {
		annotations := []entities.Annotation{{SelectedText: "text", Color: intPtr(99)}}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.Contains(t, doc, "### ⚪ Highlight (Unknown color)\n")
	})

	t.Run("missing color uses fallback", func(t *testing.T) {
		annotations := []entities.Annotation{{SelectedText: "text"}}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.Contains(t, doc, "### ⚪ Highlight (Unknown color)\n")
	})

	t.Run("missing creation time omits the line", func(t *testing.T) {
		annotations := []entities.Annotation{{SelectedText: "text", Color: intPtr(1)}}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		assert.NotContains(t, doc, "*Created:")
	})

	t.Run("keeps annotation order", func(t *testing.T) {
		annotations := []entities.Annotation{
			{SelectedText: "first"},
			{SelectedText: "second"},
			{SelectedText: "third"},
		}

		doc := RenderDocument(entities.Book{Title: "Book"}, annotations, colors)

		first := strings.Index(doc, "> first")
		second := strings.Index(doc, "> second")
		third := strings.Index(doc, "> third")
		assert.True(t, first < second && second < third)
	})
}

// --- MarkdownExporter Tests ---

func TestMarkdownExporter(t *testing.T) {
	colors := utils.DefaultColorTable()

	scenario := []entities.BookAnnotations{
		{
			Book: entities.Book{AssetID: "b1", Title: "Test: Book/Name"},
			Annotations: []entities.Annotation{
				{AssetID: "b1", SelectedText: "hello", Color: intPtr(1), CreatedAt: floatPtr(0)},
			},
		},
	}

	t.Run("writes one document per annotated book", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewMarkdownExporter(dir, colors)

		result, err := exporter.Export(scenario)
		require.NoError(t, err)

		assert.Equal(t, 1, result.BooksProcessed)
		assert.Equal(t, 1, result.HighlightsProcessed)
		require.Len(t, result.Files, 1)
		assert.Equal(t, filepath.Join(dir, "Test BookName.md"), result.Files[0])

		content, err := os.ReadFile(result.Files[0])
		require.NoError(t, err)
		assert.Contains(t, string(content), "### 🟢 Highlight (Green)")
		assert.Contains(t, string(content), "> hello")
		assert.Contains(t, string(content), "*Created: 2001-01-01 00:00:00*")
	})

	t.Run("skips books without annotations", func(t *testing.T) {
		dir := t.TempDir()
		groups := append([]entities.BookAnnotations{
			{Book: entities.Book{AssetID: "b0", Title: "Unread"}},
		}, scenario...)

		result, err := NewMarkdownExporter(dir, colors).Export(groups)
		require.NoError(t, err)

		assert.Equal(t, 1, result.BooksProcessed)
		assert.Equal(t, 1, result.BooksSkipped)
		assert.NoFileExists(t, filepath.Join(dir, "Unread.md"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("creates the output directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "highlights")

		_, err := NewMarkdownExporter(dir, colors).Export(scenario)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(dir, "Test BookName.md"))
	})

	t.Run("re-export produces identical files", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewMarkdownExporter(dir, colors)

		_, err := exporter.Export(scenario)
		require.NoError(t, err)
		first, err := os.ReadFile(filepath.Join(dir, "Test BookName.md"))
		require.NoError(t, err)

		_, err = exporter.Export(scenario)
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(dir, "Test BookName.md"))
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, exporter.Result.BooksProcessed)
	})

	t.Run("suffixes colliding names", func(t *testing.T) {
		dir := t.TempDir()
		note := []entities.Annotation{{SelectedText: "x"}}
		groups := []entities.BookAnnotations{
			{Book: entities.Book{AssetID: "a", Title: "Same Title"}, Annotations: note},
			{Book: entities.Book{AssetID: "b", Title: "Same: Title?"}, Annotations: note},
			{Book: entities.Book{AssetID: "c", Title: "SAME TITLE"}, Annotations: note},
		}

		result, err := NewMarkdownExporter(dir, colors).Export(groups)
		require.NoError(t, err)

		assert.Equal(t, []string{
			filepath.Join(dir, "Same Title.md"),
			filepath.Join(dir, "Same Title (2).md"),
			filepath.Join(dir, "SAME TITLE (3).md"),
		}, result.Files)
		for _, path := range result.Files {
			assert.FileExists(t, path)
		}
	})

	t.Run("counts empty annotations", func(t *testing.T) {
		dir := t.TempDir()
		groups := []entities.BookAnnotations{
			{
				Book:        entities.Book{Title: "Bookmarks"},
				Annotations: []entities.Annotation{{}, {SelectedText: "text"}},
			},
		}

		result, err := NewMarkdownExporter(dir, colors).Export(groups)
		require.NoError(t, err)

		assert.Equal(t, 2, result.HighlightsProcessed)
	})

	t.Run("fails when the output directory is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, err := NewMarkdownExporter(path, colors).Export(scenario)
		assert.Error(t, err)
	})
}
