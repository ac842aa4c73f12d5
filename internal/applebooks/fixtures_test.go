package applebooks

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const fullLibrarySchema = `
	CREATE TABLE ZBKLIBRARYASSET (
		Z_PK INTEGER PRIMARY KEY,
		ZASSETID TEXT,
		ZTITLE TEXT,
		ZAUTHOR TEXT,
		ZGENRE TEXT,
		ZPUBLISHER TEXT,
		ZPUBLISHDATE TIMESTAMP,
		ZLASTOPENDATE TIMESTAMP
	)
`

const minimalLibrarySchema = `
	CREATE TABLE ZBKLIBRARYASSET (
		Z_PK INTEGER PRIMARY KEY,
		ZASSETID TEXT,
		ZTITLE TEXT,
		ZAUTHOR TEXT
	)
`

const fullAnnotationSchema = `
	CREATE TABLE ZAEANNOTATION (
		Z_PK INTEGER PRIMARY KEY,
		ZANNOTATIONASSETID TEXT,
		ZANNOTATIONSELECTEDTEXT TEXT,
		ZANNOTATIONNOTE TEXT,
		ZANNOTATIONSTYLE INTEGER,
		ZANNOTATIONCOLOR INTEGER,
		ZANNOTATIONCREATIONDATE TIMESTAMP,
		ZANNOTATIONMODIFICATIONDATE TIMESTAMP,
		ZFUTUREPROOFING5 VARCHAR,
		ZANNOTATIONLOCATION VARCHAR,
		ZANNOTATIONREPRESENTATIVETEXT VARCHAR,
		ZANNOTATIONDELETED INTEGER
	)
`

// Older stores lack the color, creation date, location and deleted columns.
const reducedAnnotationSchema = `
	CREATE TABLE ZAEANNOTATION (
		Z_PK INTEGER PRIMARY KEY,
		ZANNOTATIONASSETID TEXT,
		ZANNOTATIONSELECTEDTEXT TEXT,
		ZANNOTATIONNOTE TEXT,
		ZANNOTATIONSTYLE INTEGER,
		ZANNOTATIONMODIFICATIONDATE TIMESTAMP
	)
`

// row is a column → value map for fixture inserts.
type row map[string]any

// createStore creates a SQLite file at dir/name with the given schema and rows.
func createStore(t *testing.T, dir, name, schema, table string, rows ...row) string {
	t.Helper()

	path := filepath.Join(dir, name)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to create database %s: %v", name, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema in %s: %v", name, err)
	}

	for _, r := range rows {
		insertRow(t, db, table, r)
	}

	return path
}

func insertRow(t *testing.T, db *sql.DB, table string, r row) {
	t.Helper()

	columns := make([]string, 0, len(r))
	for col := range r {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = r[col]
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	if _, err := db.Exec(query, values...); err != nil {
		t.Fatalf("Failed to insert into %s: %v", table, err)
	}
}

func createLibrary(t *testing.T, dir, schema string, rows ...row) string {
	t.Helper()
	return createStore(t, dir, "BKLibrary-1-test.sqlite", schema, "ZBKLIBRARYASSET", rows...)
}

func createAnnotations(t *testing.T, dir, schema string, rows ...row) string {
	t.Helper()
	return createStore(t, dir, "AEAnnotation_test_local.sqlite", schema, "ZAEANNOTATION", rows...)
}
