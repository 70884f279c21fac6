// Package dates turns transaction date strings of unknown grammar into a
// canonical UTC instant.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDateFormat = errors.New("unrecognised date format")

const (
	isoZulu  = "2006-01-02T15:04:05Z"
	dayFirst = "02.01.2006"
	// day and month without leading zeros, as in "5.1.2023"
	dayFirstShort = "2.1.2006"
)

// isoLayouts cover the general ISO-8601 grammar: optional fractional seconds,
// optional "Z" or numeric offset, "T" or space separator, or a bare date.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Grammar is one candidate date syntax.
type Grammar struct {
	Name  string
	parse func(string) (time.Time, bool)
}

// Grammars are tried in this order and the first match wins.
var Grammars = []Grammar{
	{Name: "iso-zulu", parse: layoutParser(isoZulu)},
	{Name: "day-first", parse: layoutParser(dayFirst, dayFirstShort)},
	{Name: "iso-8601", parse: layoutParser(isoLayouts...)},
}

func layoutParser(layouts ...string) func(string) (time.Time, bool) {
	return func(s string) (time.Time, bool) {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}

// Parse returns the canonical instant for s. Offsets are applied and the result
// is expressed in UTC; dates without a time are midnight.
func Parse(s string) (time.Time, error) {
	t, _, err := ParseGrammar(s)
	return t, err
}

// ParseGrammar is Parse and also names the grammar that matched.
func ParseGrammar(s string) (time.Time, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", fmt.Errorf("%w: empty date", ErrDateFormat)
	}

	for _, g := range Grammars {
		if t, ok := g.parse(s); ok {
			return t.UTC(), g.Name, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("%w: %q", ErrDateFormat, s)
}

// ParseDay parses s and truncates it to the start of its day.
func ParseDay(s string) (time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t), nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
