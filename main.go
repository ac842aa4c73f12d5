package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mrlokans/applebooks-export/internal/cli"
	"github.com/mrlokans/applebooks-export/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		log.Printf("WARNING: %v", err)
	}
	cfg := config.NewConfig()

	command := "export"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "export":
		runExport(cfg, args)

	case "list":
		runExport(cfg, append([]string{"-list"}, args...))

	case "version":
		fmt.Printf("applebooks-export %s (%s)\n", Version, Commit)

	case "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runExport(cfg *config.Config, args []string) {
	cmd := cli.NewExportCommand(cfg)
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  export    Export Apple Books highlights to markdown and/or CSV (default)\n")
	fmt.Fprintf(os.Stderr, "  list      List books with their highlight counts\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nSettings can also be given as environment variables or in a .env file:\n")
	fmt.Fprintf(os.Stderr, "  APPLEBOOKS_LIBRARY_DB, APPLEBOOKS_ANNOTATION_DB, EXPORT_FORMAT,\n")
	fmt.Fprintf(os.Stderr, "  EXPORT_MARKDOWN_DIR, EXPORT_CSV_FILE, VERBOSE\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
