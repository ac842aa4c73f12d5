package applebooks

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/applebooks-export/internal/entities"
)

// Filter narrows a read to a single asset. The zero value reads everything.
type Filter struct {
	AssetID string
}

// Store reads one Apple Books SQLite file. Every read opens its own
// read-only connection and closes it before returning.
type Store struct {
	path     string
	verbose  bool
	logLevel logger.LogLevel
}

// NewStore creates a store for the SQLite file at path.
func NewStore(path string, verbose bool) *Store {
	level := logger.Silent
	if verbose {
		level = logger.Info
	}
	return &Store{path: path, verbose: verbose, logLevel: level}
}

// Path returns the location of the store file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) withDB(fn func(db *gorm.DB) error) error {
	db, err := gorm.Open(sqlite.Open("file:"+s.path+"?mode=ro"), &gorm.Config{
		Logger: logger.Default.LogMode(s.logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection for %s: %w", s.path, err)
	}
	defer sqlDB.Close()

	return fn(db)
}

// DiscoverColumns reads the live column names of table from the schema
// catalog. A missing table yields an empty set.
func DiscoverColumns(db *gorm.DB, table string) (ColumnSet, error) {
	rows, err := db.Raw("SELECT name FROM pragma_table_info(?)", table).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema of %s: %w", table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema of %s: %w", table, err)
	}

	return NewColumnSet(names...), nil
}

// scanTable runs the two-phase read of spec: resolve the projection, then
// query with it and hand every row to scan. Each dest slice returned by
// newDest must hold exactly spec.Width() pointers.
func (s *Store) scanTable(spec TableSpec, filter Filter, newDest func() ([]any, func())) error {
	return s.withDB(func(db *gorm.DB) error {
		columns, err := DiscoverColumns(db, spec.Name)
		if err != nil {
			return err
		}
		projection := NewProjection(spec, columns)
		if s.verbose {
			if missing := projection.Missing(); len(missing) > 0 {
				log.Printf("%s: %s lacks optional columns %s", s.path, spec.Name, strings.Join(missing, ", "))
			}
		}

		tx := db.Table(projection.Table()).Select(strings.Join(projection.SelectList(), ", "))
		for _, cond := range projection.Conditions() {
			tx = tx.Where(cond)
		}
		if filter.AssetID != "" {
			tx = tx.Where(projection.KeyColumn()+" = ?", filter.AssetID)
		}
		tx = tx.Order(projection.OrderBy())

		rows, err := tx.Rows()
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", projection.Table(), err)
		}
		defer rows.Close()

		for rows.Next() {
			dest, commit := newDest()
			if len(dest) != projection.Width() {
				return fmt.Errorf("row of %s has %d targets, projection has %d columns",
					projection.Table(), len(dest), projection.Width())
			}
			if err := rows.Scan(dest...); err != nil {
				return fmt.Errorf("failed to scan row of %s: %w", projection.Table(), err)
			}
			commit()
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating rows of %s: %w", projection.Table(), err)
		}
		return nil
	})
}

// Books reads the library assets that have a title.
func (s *Store) Books(filter Filter) ([]entities.Book, error) {
	var books []entities.Book

	err := s.scanTable(libraryTable, filter, func() ([]any, func()) {
		var row libraryRow
		return row.dest(), func() { books = append(books, row.book()) }
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Annotations reads the annotations that are not soft-deleted.
func (s *Store) Annotations(filter Filter) ([]entities.Annotation, error) {
	var annotations []entities.Annotation

	err := s.scanTable(annotationTable, filter, func() ([]any, func()) {
		var row annotationRow
		return row.dest(), func() { annotations = append(annotations, row.annotation()) }
	})
	if err != nil {
		return nil, err
	}
	return annotations, nil
}

// libraryRow is the fixed shape of a projected ZBKLIBRARYASSET row.
type libraryRow struct {
	assetID      sql.NullString
	title        sql.NullString
	author       sql.NullString
	genre        sql.NullString
	publisher    sql.NullString
	publishDate  sql.NullString
	lastOpenDate sql.NullFloat64
}

func (r *libraryRow) dest() []any {
	return []any{
		&r.assetID,
		&r.title,
		&r.author,
		&r.genre,
		&r.publisher,
		&r.publishDate,
		&r.lastOpenDate,
	}
}

func (r *libraryRow) book() entities.Book {
	return entities.Book{
		AssetID:      r.assetID.String,
		Title:        r.title.String,
		Author:       r.author.String,
		Genre:        r.genre.String,
		Publisher:    r.publisher.String,
		PublishDate:  r.publishDate.String,
		LastOpenDate: nullFloat(r.lastOpenDate),
	}
}

// annotationRow is the fixed shape of a projected ZAEANNOTATION row.
type annotationRow struct {
	assetID            sql.NullString
	selectedText       sql.NullString
	note               sql.NullString
	style              sql.NullInt64
	color              sql.NullInt64
	createdAt          sql.NullFloat64
	modifiedAt         sql.NullFloat64
	chapter            sql.NullString
	location           sql.NullString
	representativeText sql.NullString
}

func (r *annotationRow) dest() []any {
	return []any{
		&r.assetID,
		&r.selectedText,
		&r.note,
		&r.style,
		&r.color,
		&r.createdAt,
		&r.modifiedAt,
		&r.chapter,
		&r.location,
		&r.representativeText,
	}
}

func (r *annotationRow) annotation() entities.Annotation {
	return entities.Annotation{
		AssetID:            r.assetID.String,
		SelectedText:       r.selectedText.String,
		Note:               r.note.String,
		Style:              nullInt(r.style),
		Color:              nullInt(r.color),
		CreatedAt:          nullFloat(r.createdAt),
		ModifiedAt:         nullFloat(r.modifiedAt),
		Chapter:            r.chapter.String,
		Location:           r.location.String,
		RepresentativeText: r.representativeText.String,
	}
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
