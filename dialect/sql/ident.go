package sql

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultLocaleLetters are the non-ASCII letters accepted in identifiers
// by the default sanitizer.
const DefaultLocaleLetters = "äöüß"

// Sanitizer strips every character outside its allow-list from identifiers.
// The allow-list is a-z, 0-9, '_', '*', '-', ',' and a configurable set of
// locale letters. A Sanitizer is immutable and safe for concurrent use.
type Sanitizer struct {
	locale map[rune]struct{}
}

// NewSanitizer returns a Sanitizer that additionally accepts the given locale letters.
func NewSanitizer(letters string) *Sanitizer {
	s := &Sanitizer{locale: make(map[rune]struct{})}
	for _, r := range norm.NFC.String(letters) {
		s.locale[r] = struct{}{}
	}
	return s
}

var defaultSanitizer = NewSanitizer(DefaultLocaleLetters)

// Sanitize cleans name with the default sanitizer.
func Sanitize(name string) string {
	return defaultSanitizer.Sanitize(name)
}

// Sanitize removes disallowed characters from name and every "--" sequence
// left behind. It never fails: a fully stripped name yields "", which callers
// must reject.
func (s *Sanitizer) Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range norm.NFC.String(name) {
		if s.allowed(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "")
	}
	return out
}

func (s *Sanitizer) allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '*', r == '-', r == ',':
		return true
	}
	_, ok := s.locale[r]
	return ok
}

// quote wraps a sanitized identifier in back-quotes.
func quote(ident string) string {
	return "`" + ident + "`"
}
