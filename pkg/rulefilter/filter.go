// Package rulefilter builds the conjunctive predicate used to filter
// annotation rules. Every filter field is optional and independent: an
// absent field imposes no constraint. The builder validates field syntax
// up front and returns one predicate per present field; the store folds
// them with logical AND.
package rulefilter

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/samber/lo"

	"github.com/gbif/occurrence-annotation/dao/model"
)

const (
	// Null is the sentinel value matching rules where the field is absent,
	// e.g. datasetKey=null finds rules with no dataset key.
	Null = "null"

	DefaultLimit = 100
)

// Params carries the raw filter values as supplied by the caller. Zero
// values mean "not supplied"; pointer fields distinguish unset from zero.
type Params struct {
	TaxonKey             *int64
	DatasetKey           string
	RulesetID            *uint
	ProjectID            *uint
	BasisOfRecord        []string
	BasisOfRecordNegated *bool
	YearRange            string
	Geometry             string
	CreatedBy            string
	SupportedBy          string
	ContestedBy          string
	Comment              string
	Limit                int
	Offset               int
}

// Normalize applies the paging defaults.
func (p *Params) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ValidationError reports a syntactically malformed filter value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s filter: %s", e.Field, e.Reason)
}

// Predicate tests a single filter field against a rule.
type Predicate struct {
	Field string
	Match func(r *model.Rule) bool
}

// Options supplies data a predicate needs beyond the rule row itself.
type Options struct {
	// CommentRuleIDs is the set of rule ids having a non-deleted comment
	// that contains the comment substring. The store resolves it before
	// building when Params.Comment is set.
	CommentRuleIDs map[uint]bool
}

// Build translates params into independent predicates, one per present
// field. Malformed yearRange or geometry values produce a ValidationError
// rather than being silently ignored.
func Build(p Params, opts Options) ([]Predicate, error) {
	var preds []Predicate

	if p.TaxonKey != nil {
		key := *p.TaxonKey
		preds = append(preds, Predicate{Field: "taxonKey", Match: func(r *model.Rule) bool {
			return r.TaxonKey != nil && *r.TaxonKey == key
		}})
	}

	if p.DatasetKey != "" {
		key := p.DatasetKey
		preds = append(preds, Predicate{Field: "datasetKey", Match: func(r *model.Rule) bool {
			if key == Null {
				return r.DatasetKey == nil
			}
			return r.DatasetKey != nil && *r.DatasetKey == key
		}})
	}

	if p.RulesetID != nil {
		id := *p.RulesetID
		preds = append(preds, Predicate{Field: "rulesetId", Match: func(r *model.Rule) bool {
			return r.RulesetID != nil && *r.RulesetID == id
		}})
	}

	if p.ProjectID != nil {
		id := *p.ProjectID
		preds = append(preds, Predicate{Field: "projectId", Match: func(r *model.Rule) bool {
			return r.ProjectID != nil && *r.ProjectID == id
		}})
	}

	if pred, ok := basisOfRecordPredicate(p.BasisOfRecord, p.BasisOfRecordNegated); ok {
		preds = append(preds, pred)
	}

	if p.YearRange != "" {
		pred, err := yearRangePredicate(p.YearRange)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}

	if p.Geometry != "" {
		query, err := geom.UnmarshalWKT(p.Geometry)
		if err != nil {
			return nil, &ValidationError{Field: "geometry", Reason: err.Error()}
		}
		preds = append(preds, Predicate{Field: "geometry", Match: func(r *model.Rule) bool {
			if r.Geometry == nil {
				return false
			}
			stored, err := geom.UnmarshalWKT(*r.Geometry)
			if err != nil {
				return false
			}
			return query.Intersects(stored)
		}})
	}

	if p.CreatedBy != "" {
		user := p.CreatedBy
		preds = append(preds, Predicate{Field: "createdBy", Match: func(r *model.Rule) bool {
			return r.CreatedBy == user
		}})
	}

	if p.SupportedBy != "" {
		user := p.SupportedBy
		preds = append(preds, Predicate{Field: "supportedBy", Match: func(r *model.Rule) bool {
			return lo.Contains(r.SupportedBy, user)
		}})
	}

	if p.ContestedBy != "" {
		user := p.ContestedBy
		preds = append(preds, Predicate{Field: "contestedBy", Match: func(r *model.Rule) bool {
			return lo.Contains(r.ContestedBy, user)
		}})
	}

	if p.Comment != "" {
		ids := opts.CommentRuleIDs
		preds = append(preds, Predicate{Field: "comment", Match: func(r *model.Rule) bool {
			return ids[r.ID]
		}})
	}

	return preds, nil
}

// Matches folds the predicates with logical AND. An empty predicate list
// matches every rule.
func Matches(r *model.Rule, preds []Predicate) bool {
	for i := range preds {
		if !preds[i].Match(r) {
			return false
		}
	}
	return true
}

// basisOfRecordPredicate matches rules whose basis-of-record set overlaps
// the supplied values. An empty supplied list disables the predicate. When
// the negated flag is given explicitly it is compared against the flag
// persisted on the rule; it does not invert the overlap test. The Null
// sentinel finds rules with no basis of record at all.
func basisOfRecordPredicate(values []string, negated *bool) (Predicate, bool) {
	if len(values) == 0 {
		return Predicate{}, false
	}
	wantNull := len(values) == 1 && values[0] == Null
	return Predicate{Field: "basisOfRecord", Match: func(r *model.Rule) bool {
		if wantNull {
			return len(r.BasisOfRecord) == 0
		}
		if !lo.Some(r.BasisOfRecord, values) {
			return false
		}
		return negated == nil || r.BasisOfRecordNegated == *negated
	}}, true
}

func yearRangePredicate(value string) (Predicate, error) {
	if value == Null {
		return Predicate{Field: "yearRange", Match: func(r *model.Rule) bool {
			return r.YearRange == nil
		}}, nil
	}
	query, err := ParseYearRange(value)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: "yearRange", Match: func(r *model.Rule) bool {
		if r.YearRange == nil {
			return false
		}
		stored, err := ParseYearRange(*r.YearRange)
		if err != nil {
			return false
		}
		return query.Overlaps(stored)
	}}, nil
}
