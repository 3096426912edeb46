// Package query provides the shared primitives behind every composed list
// endpoint: page/limit validation, sort-field whitelisting, and search pattern
// escaping. Repositories combine these with fixed projection SQL so each call
// site only declares what varies.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxLimit caps the number of rows a single page may request.
const MaxLimit = 100

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ErrInvalidPage reports page or limit values that are not positive integers.
type ErrInvalidPage struct {
	Param string
	Value string
}

func (e ErrInvalidPage) Error() string {
	return fmt.Sprintf("invalid %s %q: must be a positive integer", e.Param, e.Value)
}

// Page describes one window of a paginated listing.
type Page struct {
	Number int
	Limit  int
}

// ParsePage validates raw page/limit query parameters. Empty values fall back
// to defaults; zero, negative, or non-numeric values are rejected.
func ParsePage(rawPage, rawLimit string) (Page, error) {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}

	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 {
			return Page{}, ErrInvalidPage{Param: "page", Value: rawPage}
		}
		p.Number = n
	}

	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 {
			return Page{}, ErrInvalidPage{Param: "limit", Value: rawLimit}
		}
		p.Limit = n
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p, nil
}

// Offset returns the number of rows preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Sort is a validated ordering over a whitelisted column.
type Sort struct {
	Column     string
	Descending bool
}

// ErrInvalidSort reports a sort field outside the endpoint's whitelist.
type ErrInvalidSort struct {
	Field string
}

func (e ErrInvalidSort) Error() string {
	return fmt.Sprintf("cannot sort by %q", e.Field)
}

// ParseSort maps a caller-supplied field name onto a SQL column through the
// provided allow-list. An empty field selects defaultColumn. Direction is
// ascending unless rawType is "desc".
func ParseSort(rawField, rawType string, allowed map[string]string, defaultColumn string) (Sort, error) {
	column := defaultColumn
	if rawField != "" {
		mapped, ok := allowed[rawField]
		if !ok {
			return Sort{}, ErrInvalidSort{Field: rawField}
		}
		column = mapped
	}

	return Sort{Column: column, Descending: strings.EqualFold(rawType, "desc")}, nil
}

// Clause renders the ORDER BY fragment. The column was whitelisted at parse
// time, so interpolating it is safe.
func (s Sort) Clause() string {
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", s.Column, dir)
}

// LikePattern turns a raw search term into a case-insensitive substring
// pattern, escaping LIKE metacharacters so user input cannot widen the match.
func LikePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
