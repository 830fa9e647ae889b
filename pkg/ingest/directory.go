package ingest

import "github.com/dmitrymomot/docvault/pkg/sanitizer"

const (
	// MaxDirectoryLength bounds a resolved directory name, in runes.
	MaxDirectoryLength = 30
	// DefaultDirectory is used when nothing usable is left after sanitizing.
	DefaultDirectory = "untitled"
)

// ResolveDirectory picks the destination directory for an item.
// A non-empty override wins; otherwise the stem of fallbackSource is used.
// The candidate is reduced to letters, digits, '-' and '_', cut to
// MaxDirectoryLength runes and never empty.
func ResolveDirectory(override *string, fallbackSource string) string {
	candidate := Stem(fallbackSource)
	if override != nil && *override != "" {
		candidate = *override
	}
	return SanitizeDirectory(candidate)
}

// SanitizeDirectory maps name to a safe directory name. It is idempotent.
func SanitizeDirectory(name string) string {
	dir := sanitizer.SafeName(name, MaxDirectoryLength)
	if dir == "" {
		return DefaultDirectory
	}
	return dir
}
