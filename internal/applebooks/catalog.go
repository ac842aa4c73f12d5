package applebooks

import "github.com/mrlokans/applebooks-export/internal/entities"

// Catalog resolves asset identifiers to book identities. It is built once
// from the library and never mutated afterwards.
type Catalog struct {
	books []entities.Book
	index map[string]int
}

// NewCatalog indexes books by asset identifier. When an identifier occurs
// more than once the first book wins.
func NewCatalog(books []entities.Book) *Catalog {
	index := make(map[string]int, len(books))
	for i, book := range books {
		if _, exists := index[book.AssetID]; !exists {
			index[book.AssetID] = i
		}
	}
	return &Catalog{books: books, index: index}
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	return len(c.books)
}

// Lookup returns the book with the given asset identifier.
func (c *Catalog) Lookup(assetID string) (entities.Book, bool) {
	i, ok := c.index[assetID]
	if !ok {
		return entities.Book{}, false
	}
	return c.books[i], true
}

// Resolve returns the title and author for assetID, or the unknown book
// placeholder when the library has no such asset.
func (c *Catalog) Resolve(assetID string) entities.BookRef {
	book, ok := c.Lookup(assetID)
	if !ok {
		return entities.UnknownBook
	}
	return entities.BookRef{Title: book.Title, Author: book.Author}
}

// Group pairs every library book with its annotations, keeping library order
// for books and store order for annotations. Books without annotations are
// included with an empty list. Annotations of unknown assets are dropped.
func (c *Catalog) Group(annotations []entities.Annotation) []entities.BookAnnotations {
	groups := make([]entities.BookAnnotations, len(c.books))
	for i, book := range c.books {
		groups[i].Book = book
	}

	for _, a := range annotations {
		if i, ok := c.index[a.AssetID]; ok {
			groups[i].Annotations = append(groups[i].Annotations, a)
		}
	}

	return groups
}

// Unmatched returns the annotations whose asset is not in the catalog.
func (c *Catalog) Unmatched(annotations []entities.Annotation) []entities.Annotation {
	var unmatched []entities.Annotation
	for _, a := range annotations {
		if _, ok := c.index[a.AssetID]; !ok {
			unmatched = append(unmatched, a)
		}
	}
	return unmatched
}
