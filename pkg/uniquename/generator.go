// Package uniquename produces collision-resistant stored file names.
//
// A generated name keeps a sanitized form of the original stem for
// readability, then appends a UTC timestamp and a random fragment taken from a
// version 4 UUID, and finally the original extension in lower case:
//
//	report.PDF -> report_20250301T101500Z_3f9c2a1b7d4e.pdf
//
// The timestamp orders names chronologically within a directory and the 48-bit
// random fragment makes two names generated in the same second collide with
// negligible probability. Ruling collisions out entirely is left to the
// storage layer, which refuses to overwrite existing objects.
package uniquename

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/docvault/pkg/sanitizer"
)

const (
	// DefaultMaxStemLength bounds the readable part of the name, in runes.
	DefaultMaxStemLength = 50

	fallbackStem    = "file"
	timestampLayout = "20060102T150405Z"
	fragmentLength  = 12
)

// Generator creates unique file names. The zero value is not usable; use New.
// It is safe for concurrent use.
type Generator struct {
	now      func() time.Time
	fragment func() string
	maxStem  int
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithFragment replaces the random fragment source.
func WithFragment(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.fragment = fn
		}
	}
}

// WithMaxStemLength changes how many runes of the original stem are kept.
func WithMaxStemLength(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxStem = n
		}
	}
}

// New returns a Generator with the given options applied.
func New(opts ...Option) *Generator {
	g := &Generator{
		now:      time.Now,
		fragment: uuidFragment,
		maxStem:  DefaultMaxStemLength,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new stored name for original, preserving its extension.
func (g *Generator) Generate(original string) string {
	stem, ext := split(original)
	stem = sanitizer.SafeName(stem, g.maxStem)
	if stem == "" {
		stem = fallbackStem
	}
	return stem + "_" + g.now().UTC().Format(timestampLayout) + "_" + g.fragment() + ext
}

// split separates the base name of original into stem and lower-cased extension.
// The extension keeps its leading dot and is reduced to the safe alphabet.
func split(original string) (stem, ext string) {
	base := sanitizer.BaseName(original)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return base, ""
	}
	return base[:i], "." + sanitizer.SafeName(strings.ToLower(base[i+1:]), 0)
}

func uuidFragment() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:fragmentLength]
}
