package exporters

import "github.com/mrlokans/applebooks-export/internal/entities"

// BookResolver resolves the book identity of an annotation.
type BookResolver interface {
	Resolve(assetID string) entities.BookRef
}

type ExportResult struct {
	BooksProcessed      int      `json:"books_processed"`
	HighlightsProcessed int      `json:"highlights_processed"`
	BooksSkipped        int      `json:"books_skipped"`
	Files               []string `json:"files,omitempty"`
}
