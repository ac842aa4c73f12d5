package applebooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoreKind identifies one of the two Apple Books stores.
type StoreKind int

const (
	StoreLibrary StoreKind = iota
	StoreAnnotations
)

func (k StoreKind) String() string {
	switch k {
	case StoreLibrary:
		return "library"
	case StoreAnnotations:
		return "annotation"
	default:
		return fmt.Sprintf("StoreKind(%d)", int(k))
	}
}

// StoreLocation describes where a store is expected to live.
type StoreLocation struct {
	// DefaultPath is checked first.
	DefaultPath string
	// FallbackDirs are scanned in order when DefaultPath does not exist.
	FallbackDirs []string
	// Marker must appear in the file name of a fallback candidate.
	Marker string
}

// Overrides are user supplied store paths that replace the built-in defaults.
type Overrides struct {
	LibraryDB    string
	AnnotationDB string
}

// Locator finds the Apple Books stores on the local filesystem.
type Locator struct {
	locations map[StoreKind]StoreLocation
}

func containerDir(homeDir, container string, parts ...string) string {
	base := filepath.Join(homeDir, "Library", "Containers", container, "Data", "Documents")
	return filepath.Join(append([]string{base}, parts...)...)
}

// DefaultLocations returns the standard macOS locations of both stores
// under homeDir.
func DefaultLocations(homeDir string) map[StoreKind]StoreLocation {
	libraryDir := containerDir(homeDir, "com.apple.iBooksX", "BKLibrary")
	annotationDir := containerDir(homeDir, "com.apple.iBooksX", "AEAnnotation")

	return map[StoreKind]StoreLocation{
		StoreLibrary: {
			DefaultPath: filepath.Join(libraryDir, "BKLibrary-1-091020131601.sqlite"),
			FallbackDirs: []string{
				libraryDir,
				containerDir(homeDir, "com.apple.BKAgentService", "iBooks"),
			},
			Marker: "BKLibrary",
		},
		StoreAnnotations: {
			DefaultPath:  filepath.Join(annotationDir, "AEAnnotation_v10312011_1609_local.sqlite"),
			FallbackDirs: []string{annotationDir},
			Marker:       "AEAnnotation",
		},
	}
}

// NewLocator creates a locator for the stores under homeDir. Non-empty
// overrides take the place of the default paths; fallback directories are
// still scanned when an override does not exist.
func NewLocator(homeDir string, overrides Overrides) *Locator {
	locations := DefaultLocations(homeDir)

	if overrides.LibraryDB != "" {
		loc := locations[StoreLibrary]
		loc.DefaultPath = overrides.LibraryDB
		locations[StoreLibrary] = loc
	}
	if overrides.AnnotationDB != "" {
		loc := locations[StoreAnnotations]
		loc.DefaultPath = overrides.AnnotationDB
		locations[StoreAnnotations] = loc
	}

	return NewLocatorWithLocations(locations)
}

// NewLocatorWithLocations creates a locator from explicit locations.
func NewLocatorWithLocations(locations map[StoreKind]StoreLocation) *Locator {
	copied := make(map[StoreKind]StoreLocation, len(locations))
	for kind, loc := range locations {
		loc.FallbackDirs = append([]string(nil), loc.FallbackDirs...)
		copied[kind] = loc
	}
	return &Locator{locations: copied}
}

// Locate returns the path of the store of the given kind, or false when
// neither the default path nor any fallback candidate exists.
func (l *Locator) Locate(kind StoreKind) (string, bool) {
	loc, ok := l.locations[kind]
	if !ok {
		return "", false
	}

	if loc.DefaultPath != "" && isRegularFile(loc.DefaultPath) {
		return loc.DefaultPath, true
	}

	for _, dir := range loc.FallbackDirs {
		if path, ok := scanDir(dir, loc.Marker); ok {
			return path, true
		}
	}

	return "", false
}

// scanDir returns the first *.sqlite file in dir whose name contains marker.
// os.ReadDir yields entries sorted by name.
func scanDir(dir, marker string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sqlite" || !strings.Contains(name, marker) {
			continue
		}
		path := filepath.Join(dir, name)
		if isRegularFile(path) {
			return path, true
		}
	}

	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
