package ingest

import (
	"strings"

	"github.com/dmitrymomot/docvault/pkg/sanitizer"
)

// splitName separates the base name of filename into stem and extension.
// The extension keeps its dot and its case. Names without a dot, dot-files
// such as ".env" and names ending in a dot have no extension.
func splitName(filename string) (stem, ext string) {
	base := sanitizer.BaseName(filename)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return base, ""
	}
	return base[:i], base[i:]
}

// Extension returns the lower-cased extension of filename including the dot,
// or "" when it has none.
func Extension(filename string) string {
	_, ext := splitName(filename)
	return strings.ToLower(ext)
}

// Stem returns the base name of filename without its extension.
func Stem(filename string) string {
	stem, _ := splitName(filename)
	return stem
}

// IsAllowed reports whether the extension of filename is in allowed.
// A file without an extension is never allowed.
func IsAllowed(filename string, allowed Extensions) bool {
	ext := Extension(filename)
	return ext != "" && allowed.Contains(ext)
}
