// Package filter performs lexical profanity substitution on submitted text.
package filter

import (
	"regexp"
	"strings"
)

var defaultWords = []string{"damn", "hell", "crap", "stupid", "idiot"}

type Filter struct {
	patterns []*regexp.Regexp
}

func New(words ...string) *Filter {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(w)))
	}
	return &Filter{patterns: patterns}
}

func Default() *Filter {
	return New(defaultWords...)
}

// Clean replaces every listed word, case-insensitively, with a run of
// asterisks of the same length.
func (f *Filter) Clean(text string) string {
	for _, p := range f.patterns {
		text = p.ReplaceAllStringFunc(text, func(match string) string {
			return strings.Repeat("*", len(match))
		})
	}
	return text
}
