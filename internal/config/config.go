package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppleBooks
		Export
		Global
	}

	AppleBooks struct {
		LibraryDBPath    string // Overrides the BKLibrary store location
		AnnotationDBPath string // Overrides the AEAnnotation store location
	}
	Export struct {
		Format      string `validate:"required,oneof=markdown csv both"`
		MarkdownDir string `validate:"required"`
		CSVFile     string `validate:"required"`
	}
	Global struct {
		Verbose bool
	}
)

// LoadEnvFile loads variables from an env file into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("applebooks_library_db", "")
	v.SetDefault("applebooks_annotation_db", "")
	v.SetDefault("export_format", FormatMarkdown)
	v.SetDefault("export_markdown_dir", DefaultMarkdownDir)
	v.SetDefault("export_csv_file", DefaultCSVFile)
	v.SetDefault("verbose", false)

	return &Config{
		AppleBooks: AppleBooks{
			LibraryDBPath:    v.GetString("APPLEBOOKS_LIBRARY_DB"),
			AnnotationDBPath: v.GetString("APPLEBOOKS_ANNOTATION_DB"),
		},
		Export: Export{
			Format:      strings.ToLower(v.GetString("EXPORT_FORMAT")),
			MarkdownDir: v.GetString("EXPORT_MARKDOWN_DIR"),
			CSVFile:     v.GetString("EXPORT_CSV_FILE"),
		},
		Global: Global{
			Verbose: v.GetBool("VERBOSE"),
		},
	}
}

// Validate checks the export settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c.Export); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}

		messages := make([]string, 0, len(validationErrs))
		for _, e := range validationErrs {
			messages = append(messages, friendlyMessage(e))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
	}
}
