package applebooks

import (
	"errors"
	"log"

	"github.com/mrlokans/applebooks-export/internal/entities"
)

// ErrStoreNotFound is reported when no candidate path exists for a store.
var ErrStoreNotFound = errors.New("store not found")

// Extractor reads books and annotations from the Apple Books stores.
// Store failures never abort a run: they are logged and the affected read
// returns no rows, so an unreadable store looks like an empty one.
type Extractor struct {
	locator *Locator
	verbose bool
}

// NewExtractor creates an extractor that finds stores with locator.
func NewExtractor(locator *Locator, verbose bool) *Extractor {
	return &Extractor{locator: locator, verbose: verbose}
}

// Store returns the store of the given kind, or ErrStoreNotFound.
func (e *Extractor) Store(kind StoreKind) (*Store, error) {
	path, ok := e.locator.Locate(kind)
	if !ok {
		return nil, ErrStoreNotFound
	}
	return NewStore(path, e.verbose), nil
}

// Books returns the library books matching filter.
func (e *Extractor) Books(filter Filter) []entities.Book {
	store, ok := e.open(StoreLibrary)
	if !ok {
		return nil
	}

	books, err := store.Books(filter)
	if err != nil {
		log.Printf("Library database error: %v", err)
		return nil
	}
	return books
}

// Annotations returns the non-deleted annotations matching filter.
func (e *Extractor) Annotations(filter Filter) []entities.Annotation {
	store, ok := e.open(StoreAnnotations)
	if !ok {
		return nil
	}

	annotations, err := store.Annotations(filter)
	if err != nil {
		log.Printf("Annotation database error: %v", err)
		return nil
	}
	return annotations
}

func (e *Extractor) open(kind StoreKind) (*Store, bool) {
	store, err := e.Store(kind)
	if err != nil {
		log.Printf("Error: %s database: %v", kind, err)
		return nil, false
	}
	return store, true
}
