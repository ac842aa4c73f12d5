package cli

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mrlokans/applebooks-export/internal/applebooks"
	"github.com/mrlokans/applebooks-export/internal/config"
	"github.com/mrlokans/applebooks-export/internal/entities"
	"github.com/mrlokans/applebooks-export/internal/exporters"
	"github.com/mrlokans/applebooks-export/internal/utils"
)

// ExportCommand extracts Apple Books highlights and writes them as markdown
// documents and/or a CSV table.
type ExportCommand struct {
	LibraryDBPath    string
	AnnotationDBPath string
	MarkdownDir      string
	CSVFile          string
	Format           string
	AssetID          string
	List             bool
	Verbose          bool

	// HomeDir is the directory under which the Apple Books containers live.
	HomeDir string
	// Out receives progress output.
	Out io.Writer

	cfg    *config.Config
	colors utils.ColorTable
}

// NewExportCommand creates an ExportCommand whose flag defaults come from cfg.
func NewExportCommand(cfg *config.Config) *ExportCommand {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Could not determine home directory: %v", err)
	}

	return &ExportCommand{
		HomeDir: homeDir,
		Out:     os.Stdout,
		cfg:     cfg,
		colors:  utils.DefaultColorTable(),
	}
}

// ParseFlags parses command line flags
func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.BoolVar(&cmd.List, "list", false, "List books with their highlight counts and exit without exporting")
	fs.StringVar(&cmd.Format, "format", cmd.cfg.Export.Format, "Export format: markdown, csv or both")
	fs.StringVar(&cmd.MarkdownDir, "markdown-dir", cmd.cfg.Export.MarkdownDir, "Output directory for markdown files")
	fs.StringVar(&cmd.CSVFile, "csv-file", cmd.cfg.Export.CSVFile, "Output file for the CSV export")
	fs.StringVar(&cmd.LibraryDBPath, "library-db", cmd.cfg.AppleBooks.LibraryDBPath, "Path to the Apple Books library database (auto-detected if not specified)")
	fs.StringVar(&cmd.AnnotationDBPath, "annotation-db", cmd.cfg.AppleBooks.AnnotationDBPath, "Path to the Apple Books annotation database (auto-detected if not specified)")
	fs.StringVar(&cmd.AssetID, "book", "", "Only export the book with this asset ID")
	fs.BoolVar(&cmd.Verbose, "verbose", cmd.cfg.Global.Verbose, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export highlights and notes from Apple Books to markdown and/or CSV.\n\n")

		if runtime.GOOS == "darwin" {
			fmt.Fprintf(os.Stderr, "On macOS, the Apple Books database paths are automatically detected:\n")
			fmt.Fprintf(os.Stderr, "  - Annotations: ~/Library/Containers/com.apple.iBooksX/Data/Documents/AEAnnotation/\n")
			fmt.Fprintf(os.Stderr, "  - Books: ~/Library/Containers/com.apple.iBooksX/Data/Documents/BKLibrary/\n\n")
		} else {
			fmt.Fprintf(os.Stderr, "NOTE: Apple Books is only available on macOS. You can still export from\n")
			fmt.Fprintf(os.Stderr, "copied database files using the -annotation-db and -library-db flags.\n\n")
		}

		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # List books and how many highlights each has:\n")
		fmt.Fprintf(os.Stderr, "  %s export -list\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Export markdown and CSV:\n")
		fmt.Fprintf(os.Stderr, "  %s export -format both -markdown-dir ~/Notes/Books -csv-file ~/Notes/books.csv\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.cfg.Export = config.Export{
		Format:      cmd.Format,
		MarkdownDir: cmd.MarkdownDir,
		CSVFile:     cmd.CSVFile,
	}
	return cmd.cfg.Validate()
}

func (cmd *ExportCommand) printf(format string, args ...any) {
	fmt.Fprintf(cmd.Out, format, args...)
}

func (cmd *ExportCommand) newExtractor() *applebooks.Extractor {
	locator := applebooks.NewLocator(cmd.HomeDir, applebooks.Overrides{
		LibraryDB:    cmd.LibraryDBPath,
		AnnotationDB: cmd.AnnotationDBPath,
	})
	extractor := applebooks.NewExtractor(locator, cmd.Verbose)

	for _, kind := range []applebooks.StoreKind{applebooks.StoreLibrary, applebooks.StoreAnnotations} {
		if store, err := extractor.Store(kind); err == nil {
			cmd.printf("Found %s database: %s\n", kind, store.Path())
		}
	}

	return extractor
}

// Run executes the command
func (cmd *ExportCommand) Run() error {
	extractor := cmd.newExtractor()
	filter := applebooks.Filter{AssetID: cmd.AssetID}

	if cmd.List {
		cmd.listBooks(extractor, filter)
		return nil
	}

	switch cmd.Format {
	case config.FormatMarkdown:
		return cmd.exportMarkdown(extractor, filter)
	case config.FormatCSV:
		return cmd.exportCSV(extractor, filter)
	case config.FormatBoth:
		if err := cmd.exportMarkdown(extractor, filter); err != nil {
			return err
		}
		return cmd.exportCSV(extractor, filter)
	default:
		return fmt.Errorf("unknown format: %s", cmd.Format)
	}
}

func (cmd *ExportCommand) listBooks(extractor *applebooks.Extractor, filter applebooks.Filter) {
	books := extractor.Books(filter)
	if len(books) == 0 {
		cmd.printf("No books found\n")
		return
	}

	catalog := applebooks.NewCatalog(books)
	groups := catalog.Group(extractor.Annotations(filter))

	cmd.printf("\n📚 Found %d books:\n\n", len(books))
	for i, group := range groups {
		cmd.printf("%d. %s\n", i+1, group.Book.Title)
		if group.Book.Author != "" {
			cmd.printf("   Author: %s\n", group.Book.Author)
		}
		if group.Book.LastOpenDate != nil {
			cmd.printf("   Last opened: %s\n", applebooks.FormatTimestamp(group.Book.LastOpenDate))
		}
		if cmd.Verbose {
			if group.Book.Genre != "" {
				cmd.printf("   Genre: %s\n", group.Book.Genre)
			}
			cmd.printf("   Asset ID: %s\n", group.Book.AssetID)
		}
		cmd.printf("   Highlights/notes: %d\n\n", len(group.Annotations))
	}
}

func (cmd *ExportCommand) exportMarkdown(extractor *applebooks.Extractor, filter applebooks.Filter) error {
	cmd.printf("Reading books...\n")
	books := extractor.Books(filter)
	if len(books) == 0 {
		cmd.printf("No books found\n")
		return nil
	}
	cmd.printf("Found %d books\n", len(books))

	catalog := applebooks.NewCatalog(books)
	groups := catalog.Group(extractor.Annotations(filter))

	if cmd.Verbose {
		for _, group := range groups {
			if len(group.Annotations) == 0 {
				cmd.printf("  - %s: no highlights or notes\n", group.Book.Title)
				continue
			}
			cmd.printf("  → %s: %d highlights/notes", group.Book.Title, len(group.Annotations))
			if empty := countEmpty(group.Annotations); empty > 0 {
				cmd.printf(" (%d without text)", empty)
			}
			cmd.printf("\n")
		}
	}

	outputDir, err := filepath.Abs(cmd.MarkdownDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}

	exporter := exporters.NewMarkdownExporter(outputDir, cmd.colors)
	result, err := exporter.Export(groups)
	if err != nil {
		return fmt.Errorf("failed to export to markdown: %w", err)
	}

	cmd.printf("\n✅ Markdown export complete!\n")
	cmd.printf("📚 Books processed: %d\n", len(books))
	cmd.printf("📄 Documents written: %d\n", result.BooksProcessed)
	cmd.printf("📝 Highlights/notes extracted: %d\n", result.HighlightsProcessed)
	cmd.printf("📁 Files saved in: %s\n", outputDir)
	return nil
}

func (cmd *ExportCommand) exportCSV(extractor *applebooks.Extractor, filter applebooks.Filter) error {
	cmd.printf("Reading books...\n")
	catalog := applebooks.NewCatalog(extractor.Books(filter))
	if catalog.Len() == 0 {
		cmd.printf("No books found, highlights will use %q\n", entities.UnknownTitle)
	}

	cmd.printf("Reading annotations...\n")
	annotations := extractor.Annotations(filter)

	if unmatched := catalog.Unmatched(annotations); len(unmatched) > 0 && cmd.Verbose {
		cmd.printf("  %d highlights/notes belong to books missing from the library\n", len(unmatched))
	}

	exporter := exporters.NewCSVExporter(cmd.CSVFile, cmd.colors)
	result, err := exporter.Export(annotations, catalog)
	if err != nil {
		return fmt.Errorf("failed to export to csv: %w", err)
	}

	cmd.printf("\n✅ CSV file saved: %s (%d rows)\n", cmd.CSVFile, result.HighlightsProcessed)
	return nil
}

// countEmpty counts annotations with neither text nor note, such as bookmarks.
func countEmpty(annotations []entities.Annotation) int {
	n := 0
	for _, a := range annotations {
		if a.IsEmpty() {
			n++
		}
	}
	return n
}
