// Package search fetches web and social documents that feed prompts.
package search

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Query is one search request. Domains restricts results to those hosts.
type Query struct {
	Text        string
	NumResults  int
	Domains     []string
	IncludeText bool
}

// Document is one ranked search result.
type Document struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Searcher runs a query once and returns at most NumResults documents.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Document, error)
}

// SearchError reports a failed search. Callers decide whether to degrade.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search: %q: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Ellipsis marks a truncated text.
const Ellipsis = "..."

// Truncate cuts s after n characters and appends Ellipsis. Shorter strings
// are returned unchanged.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + Ellipsis
}
