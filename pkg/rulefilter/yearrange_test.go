package rulefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearRange(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		yr, err := ParseYearRange("1990,2000")
		require.NoError(t, err)
		require.NotNil(t, yr.Lo)
		require.NotNil(t, yr.Hi)
		assert.Equal(t, 1990, *yr.Lo)
		assert.Equal(t, 2000, *yr.Hi)
	})

	t.Run("open lower bound", func(t *testing.T) {
		yr, err := ParseYearRange("*,2000")
		require.NoError(t, err)
		assert.Nil(t, yr.Lo)
		require.NotNil(t, yr.Hi)
		assert.Equal(t, 2000, *yr.Hi)
	})

	t.Run("open upper bound", func(t *testing.T) {
		yr, err := ParseYearRange("1990,*")
		require.NoError(t, err)
		require.NotNil(t, yr.Lo)
		assert.Nil(t, yr.Hi)
	})

	t.Run("both open", func(t *testing.T) {
		yr, err := ParseYearRange("*,*")
		require.NoError(t, err)
		assert.Nil(t, yr.Lo)
		assert.Nil(t, yr.Hi)
	})

	t.Run("single year", func(t *testing.T) {
		yr, err := ParseYearRange("2000,2000")
		require.NoError(t, err)
		assert.Equal(t, *yr.Lo, *yr.Hi)
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		_, err := ParseYearRange("2000,1990")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "yearRange", verr.Field)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, in := range []string{"", "1990", "1990,2000,2010", "abc,2000", "1990,xyz"} {
			_, err := ParseYearRange(in)
			assert.Error(t, err, "input %q", in)
		}
	})
}

func TestYearRangeOverlaps(t *testing.T) {
	parse := func(s string) YearRange {
		yr, err := ParseYearRange(s)
		require.NoError(t, err)
		return yr
	}

	tests := []struct {
		a, b string
		want bool
	}{
		{"1990,2000", "1995,2005", true},
		{"1990,2000", "2000,2010", true}, // closed intervals touch
		{"1990,2000", "2001,2010", false},
		{"*,2000", "1990,1995", true},
		{"*,2000", "2001,*", false},
		{"*,*", "1850,1850", true},
		{"2000,2000", "2000,2000", true},
		{"1990,*", "*,1989", false},
	}
	for _, tt := range tests {
		got := parse(tt.a).Overlaps(parse(tt.b))
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
		// overlap is symmetric
		assert.Equal(t, got, parse(tt.b).Overlaps(parse(tt.a)), "%s vs %s reversed", tt.b, tt.a)
	}
}

func TestValidateGeometry(t *testing.T) {
	assert.NoError(t, ValidateGeometry("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))"))
	assert.NoError(t, ValidateGeometry("POINT (5 5)"))

	err := ValidateGeometry("POLYGON ((not wkt))")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "geometry", verr.Field)
}
