package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Most filesystems cap names at 255 bytes, extension included.
const maxFilenameBytes = 200

// SanitizeTitle turns a book title into a file name stem. Letters, digits,
// spaces, hyphens and underscores are kept; everything else is stripped.
// Titles are NFC-normalized first so decomposed accents survive.
func SanitizeTitle(title string) string {
	title = norm.NFC.String(title)

	title = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return r
		case r == ' ', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, title)

	title = strings.TrimSpace(title)

	if len(title) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = strings.TrimSpace(title[:cut])
	}

	// Ensure it's not empty
	if title == "" {
		title = "Untitled"
	}

	return title
}
