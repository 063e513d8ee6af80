package utils

import (
	"path"
	"regexp"
	"strings"
)

const maxFilenameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename cleans a client-supplied upload name before it is
// recorded. Directory components are dropped, control and reserved
// characters removed, and the result is capped at 200 bytes with the
// extension preserved.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	filename = path.Base(filename)
	if filename == "." || filename == "/" {
		filename = ""
	}

	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	if len(filename) > maxFilenameLength {
		ext := path.Ext(filename)
		if len(ext) > 10 {
			ext = ""
		}
		filename = strings.TrimSpace(truncateUTF8(filename[:len(filename)-len(ext)], maxFilenameLength-len(ext))) + ext
	}

	if filename == "" {
		filename = "upload"
	}
	return filename
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
