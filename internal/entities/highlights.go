package entities

import "strings"

// Placeholders used when an annotation references an asset that is not in
// the library store.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// Book is a single asset from the Apple Books library store.
// Text columns that are NULL or absent from the store's schema are empty;
// numeric optional columns are nil.
type Book struct {
	AssetID      string
	Title        string
	Author       string
	Genre        string
	Publisher    string
	PublishDate  string
	LastOpenDate *float64 // Core Data seconds since 2001-01-01 UTC
}

// Annotation is a highlight or note from the annotation store.
type Annotation struct {
	AssetID            string
	SelectedText       string
	Note               string
	Style              *int
	Color              *int
	CreatedAt          *float64 // Core Data seconds since 2001-01-01 UTC
	ModifiedAt         *float64
	Chapter            string
	Location           string // EPUB CFI
	RepresentativeText string
}

// HasSelectedText reports whether the annotation highlights a passage.
func (a Annotation) HasSelectedText() bool {
	return strings.TrimSpace(a.SelectedText) != ""
}

// HasNote reports whether the user wrote a note on the annotation.
func (a Annotation) HasNote() bool {
	return strings.TrimSpace(a.Note) != ""
}

// IsEmpty reports whether the annotation carries neither text nor note,
// e.g. a bare bookmark.
func (a Annotation) IsEmpty() bool {
	return !a.HasSelectedText() && !a.HasNote()
}

// BookRef is the identity of a book as seen from an annotation.
type BookRef struct {
	Title  string
	Author string
}

// UnknownBook is the identity given to annotations whose asset is missing
// from the library.
var UnknownBook = BookRef{Title: UnknownTitle, Author: UnknownAuthor}

// BookAnnotations pairs a library book with the annotations made in it.
type BookAnnotations struct {
	Book        Book
	Annotations []Annotation
}
