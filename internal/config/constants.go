package config

// Default export destinations
const (
	// DefaultMarkdownDir is the folder that receives one markdown file per book
	DefaultMarkdownDir = "Books_Highlights"

	// DefaultCSVFile is the file that receives the flat highlights table
	DefaultCSVFile = "books_highlights.csv"

	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"
)

// Export formats
const (
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatBoth     = "both"
)
