package rulefilter

import (
	"strconv"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
)

// YearRange is a closed interval of years. A nil bound is unbounded on
// that side, written '*' in the textual form "<lo>,<hi>".
type YearRange struct {
	Lo *int
	Hi *int
}

// ParseYearRange parses the textual "<lo>,<hi>" form, where each side is a
// year or '*'. Both sides unbounded is accepted; a lower bound above the
// upper bound is not.
func ParseYearRange(s string) (YearRange, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return YearRange{}, &ValidationError{Field: "yearRange", Reason: "expected '<lo>,<hi>', got " + strconv.Quote(s)}
	}
	var yr YearRange
	var err error
	if yr.Lo, err = parseYearBound(parts[0]); err != nil {
		return YearRange{}, err
	}
	if yr.Hi, err = parseYearBound(parts[1]); err != nil {
		return YearRange{}, err
	}
	if yr.Lo != nil && yr.Hi != nil && *yr.Lo > *yr.Hi {
		return YearRange{}, &ValidationError{Field: "yearRange", Reason: "lower bound exceeds upper bound"}
	}
	return yr, nil
}

func parseYearBound(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return nil, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return nil, &ValidationError{Field: "yearRange", Reason: "bound must be a year or '*', got " + strconv.Quote(s)}
	}
	return &year, nil
}

// Overlaps reports whether the two closed intervals intersect.
func (a YearRange) Overlaps(b YearRange) bool {
	if a.Lo != nil && b.Hi != nil && *a.Lo > *b.Hi {
		return false
	}
	if b.Lo != nil && a.Hi != nil && *b.Lo > *a.Hi {
		return false
	}
	return true
}

// ValidateGeometry checks that s is parsable WKT, used when rules are
// created or updated so stored geometries are always comparable.
func ValidateGeometry(s string) error {
	if _, err := geom.UnmarshalWKT(s); err != nil {
		return &ValidationError{Field: "geometry", Reason: err.Error()}
	}
	return nil
}
