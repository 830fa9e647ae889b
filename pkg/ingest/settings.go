package ingest

import (
	"slices"
	"strings"
)

// Settings is the read-only configuration of a Pipeline.
// Built once at startup (usually with config.Load) and passed by value.
type Settings struct {
	StorageRoot       string     `env:"DOC_LOCATION_STORE" envDefault:"./assets/docs"`
	AllowedExtensions Extensions `env:"FILE_TYPES" envDefault:".pdf,.txt,.md,.docx"`
}

// Extensions is a set of lower-cased file extensions, each with a leading dot.
type Extensions map[string]struct{}

// NewExtensions builds a normalized set from exts. Entries may be given with
// or without the dot and in any case; blanks are ignored.
func NewExtensions(exts ...string) Extensions {
	set := make(Extensions, len(exts))
	for _, ext := range exts {
		if ext = normalizeExtension(ext); ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// UnmarshalText parses a comma separated list, e.g. "pdf, .TXT,.md".
func (e *Extensions) UnmarshalText(text []byte) error {
	*e = NewExtensions(strings.Split(string(text), ",")...)
	return nil
}

// Contains reports whether ext, already normalized, is in the set.
func (e Extensions) Contains(ext string) bool {
	_, ok := e[ext]
	return ok
}

// List returns the extensions in sorted order.
func (e Extensions) List() []string {
	list := make([]string, 0, len(e))
	for ext := range e {
		list = append(list, ext)
	}
	slices.Sort(list)
	return list
}

func (e Extensions) String() string {
	return strings.Join(e.List(), ",")
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
