package rulefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gbif/occurrence-annotation/dao/model"
)

func ptr[T any](v T) *T { return &v }

// sampleRule scopes a taxon in a dataset to human observations between
// 1990 and 2000, within a square.
func sampleRule() *model.Rule {
	return &model.Rule{
		ID:            1,
		TaxonKey:      ptr(int64(2476674)),
		DatasetKey:    ptr("50c9509d-22c7-4a22-a47d-8c48425ef4a7"),
		Annotation:    model.AnnotationNative,
		BasisOfRecord: datatypes.JSONSlice[string]{"HUMAN_OBSERVATION", "OBSERVATION"},
		YearRange:     ptr("1990,2000"),
		Geometry:      ptr("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))"),
		CreatedBy:     "alice",
		SupportedBy:   datatypes.JSONSlice[string]{"bob"},
		ContestedBy:   datatypes.JSONSlice[string]{"carol"},
	}
}

func matches(t *testing.T, p Params, r *model.Rule) bool {
	t.Helper()
	preds, err := Build(p, Options{})
	require.NoError(t, err)
	return Matches(r, preds)
}

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}
	p.Normalize()
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = Params{Limit: 10, Offset: -5}
	p.Normalize()
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestEmptyParamsMatchEverything(t *testing.T) {
	preds, err := Build(Params{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, preds)
	assert.True(t, Matches(sampleRule(), preds))
}

func TestTaxonKeyPredicate(t *testing.T) {
	r := sampleRule()
	assert.True(t, matches(t, Params{TaxonKey: ptr(int64(2476674))}, r))
	assert.False(t, matches(t, Params{TaxonKey: ptr(int64(1))}, r))

	r.TaxonKey = nil
	assert.False(t, matches(t, Params{TaxonKey: ptr(int64(2476674))}, r))
}

func TestDatasetKeyPredicate(t *testing.T) {
	r := sampleRule()
	assert.True(t, matches(t, Params{DatasetKey: "50c9509d-22c7-4a22-a47d-8c48425ef4a7"}, r))
	assert.False(t, matches(t, Params{DatasetKey: "other"}, r))
	assert.False(t, matches(t, Params{DatasetKey: Null}, r))

	r.DatasetKey = nil
	assert.True(t, matches(t, Params{DatasetKey: Null}, r))
}

func TestBasisOfRecordPredicate(t *testing.T) {
	r := sampleRule()

	t.Run("overlap matches", func(t *testing.T) {
		assert.True(t, matches(t, Params{BasisOfRecord: []string{"HUMAN_OBSERVATION"}}, r))
		assert.True(t, matches(t, Params{BasisOfRecord: []string{"FOSSIL_SPECIMEN", "OBSERVATION"}}, r))
	})

	t.Run("disjoint does not match", func(t *testing.T) {
		assert.False(t, matches(t, Params{BasisOfRecord: []string{"FOSSIL_SPECIMEN"}}, r))
	})

	t.Run("negated flag compares against the stored flag", func(t *testing.T) {
		// r stores negated=false: asking for negated=true rules excludes it
		// even though the record types overlap.
		p := Params{BasisOfRecord: []string{"HUMAN_OBSERVATION"}, BasisOfRecordNegated: ptr(true)}
		assert.False(t, matches(t, p, r))

		p.BasisOfRecordNegated = ptr(false)
		assert.True(t, matches(t, p, r))

		neg := sampleRule()
		neg.BasisOfRecordNegated = true
		p.BasisOfRecordNegated = ptr(true)
		assert.True(t, matches(t, p, neg))
	})

	t.Run("null sentinel finds rules without record types", func(t *testing.T) {
		assert.False(t, matches(t, Params{BasisOfRecord: []string{Null}}, r))

		bare := sampleRule()
		bare.BasisOfRecord = nil
		assert.True(t, matches(t, Params{BasisOfRecord: []string{Null}}, bare))
	})
}

func TestYearRangePredicate(t *testing.T) {
	r := sampleRule() // stores 1990,2000

	assert.True(t, matches(t, Params{YearRange: "1995,2005"}, r))
	assert.True(t, matches(t, Params{YearRange: "*,1990"}, r))
	assert.False(t, matches(t, Params{YearRange: "2001,*"}, r))

	t.Run("null sentinel", func(t *testing.T) {
		assert.False(t, matches(t, Params{YearRange: Null}, r))
		open := sampleRule()
		open.YearRange = nil
		assert.True(t, matches(t, Params{YearRange: Null}, open))
	})

	t.Run("ruleless range never matches a bounded query", func(t *testing.T) {
		open := sampleRule()
		open.YearRange = nil
		assert.False(t, matches(t, Params{YearRange: "1990,2000"}, open))
	})

	t.Run("malformed query is a validation error", func(t *testing.T) {
		_, err := Build(Params{YearRange: "1990"}, Options{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "yearRange", verr.Field)
	})
}

func TestGeometryPredicate(t *testing.T) {
	r := sampleRule() // unit square scaled to 10

	t.Run("intersecting query matches", func(t *testing.T) {
		assert.True(t, matches(t, Params{Geometry: "POLYGON ((5 5, 15 5, 15 15, 5 15, 5 5))"}, r))
	})

	t.Run("disjoint query does not match", func(t *testing.T) {
		assert.False(t, matches(t, Params{Geometry: "POLYGON ((20 20, 30 20, 30 30, 20 30, 20 20))"}, r))
	})

	t.Run("rule without geometry never matches", func(t *testing.T) {
		bare := sampleRule()
		bare.Geometry = nil
		assert.False(t, matches(t, Params{Geometry: "POINT (5 5)"}, bare))
	})

	t.Run("malformed query is a validation error", func(t *testing.T) {
		_, err := Build(Params{Geometry: "POLYGON ((oops))"}, Options{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "geometry", verr.Field)
	})
}

func TestUserPredicates(t *testing.T) {
	r := sampleRule()
	assert.True(t, matches(t, Params{CreatedBy: "alice"}, r))
	assert.False(t, matches(t, Params{CreatedBy: "bob"}, r))
	assert.True(t, matches(t, Params{SupportedBy: "bob"}, r))
	assert.False(t, matches(t, Params{SupportedBy: "carol"}, r))
	assert.True(t, matches(t, Params{ContestedBy: "carol"}, r))
	assert.False(t, matches(t, Params{ContestedBy: "bob"}, r))
}

func TestCommentPredicate(t *testing.T) {
	r := sampleRule()
	preds, err := Build(Params{Comment: "looks wrong"}, Options{CommentRuleIDs: map[uint]bool{1: true}})
	require.NoError(t, err)
	assert.True(t, Matches(r, preds))

	preds, err = Build(Params{Comment: "looks wrong"}, Options{CommentRuleIDs: map[uint]bool{}})
	require.NoError(t, err)
	assert.False(t, Matches(r, preds))
}

// Removing a filter field can only widen the matching set.
func TestPredicatesAreConjunctive(t *testing.T) {
	r := sampleRule()
	full := Params{
		TaxonKey:      ptr(int64(2476674)),
		DatasetKey:    "50c9509d-22c7-4a22-a47d-8c48425ef4a7",
		BasisOfRecord: []string{"HUMAN_OBSERVATION"},
		YearRange:     "1990,2000",
		CreatedBy:     "alice",
	}
	assert.True(t, matches(t, full, r))

	narrower := full
	narrower.CreatedBy = "mallory"
	assert.False(t, matches(t, narrower, r))

	wider := full
	wider.CreatedBy = ""
	wider.YearRange = ""
	assert.True(t, matches(t, wider, r))
}
