package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gbif/occurrence-annotation/dao/model"
	"github.com/gbif/occurrence-annotation/pkg/rulefilter"
)

// MetricsFilter scopes the aggregate counts. Fields follow the equality
// semantics of the list filter; DatasetKey accepts the "null" sentinel.
type MetricsFilter struct {
	Username   string
	TaxonKey   *int64
	DatasetKey string
	RulesetID  *uint
	ProjectID  *uint
}

// RuleService owns rule CRUD, the filtered listing, voting transitions and
// the aggregate metrics.
type RuleService interface {
	List(p rulefilter.Params) ([]model.Rule, error)
	Get(id uint) (*model.Rule, error)
	Create(rule *model.Rule, actor Actor) (*model.Rule, error)
	Update(id uint, rule *model.Rule, actor Actor) (*model.Rule, error)
	Delete(id uint, actor Actor) (*model.Rule, error)
	DeleteByProject(projectID uint, actingUser string) error
	Support(id uint, username string) (*model.Rule, error)
	RemoveSupport(id uint, username string) (*model.Rule, error)
	Contest(id uint, username string) (*model.Rule, error)
	RemoveContest(id uint, username string) (*model.Rule, error)
	Metrics(f MetricsFilter) (*model.RuleMetrics, error)
}

type ruleService struct {
	db *gorm.DB
}

func NewRuleService(db *gorm.DB) RuleService {
	return &ruleService{db: db}
}

// List applies the filter predicates to all non-deleted rules in id order,
// then pages. Predicates run in-process so their semantics stay identical
// across database backends; the rules table is narrow and small enough
// that the scan is not a concern.
func (s *ruleService) List(p rulefilter.Params) ([]model.Rule, error) {
	p.Normalize()

	var opts rulefilter.Options
	if p.Comment != "" {
		ids, err := s.commentRuleIDs(p.Comment)
		if err != nil {
			return nil, err
		}
		opts.CommentRuleIDs = ids
	}

	preds, err := rulefilter.Build(p, opts)
	if err != nil {
		return nil, err
	}

	var rows []model.Rule
	if err := s.db.Where("deleted IS NULL").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	matched := make([]model.Rule, 0, len(rows))
	for i := range rows {
		if rulefilter.Matches(&rows[i], preds) {
			matched = append(matched, rows[i])
		}
	}

	if p.Offset >= len(matched) {
		return []model.Rule{}, nil
	}
	matched = matched[p.Offset:]
	if p.Limit < len(matched) {
		matched = matched[:p.Limit]
	}
	return matched, nil
}

// commentRuleIDs resolves the comment substring filter to the set of rule
// ids having a matching non-deleted comment. Matching is case-insensitive.
func (s *ruleService) commentRuleIDs(substring string) (map[uint]bool, error) {
	var ids []uint
	err := s.db.Model(&model.Comment{}).
		Where("deleted IS NULL").
		Where("lower(comment) LIKE ?", "%"+strings.ToLower(substring)+"%").
		Distinct("rule_id").
		Pluck("rule_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Get returns the rule even when logically deleted.
func (s *ruleService) Get(id uint) (*model.Rule, error) {
	var rule model.Rule
	if err := s.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rule %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &rule, nil
}

// Create persists a new rule. The creator is always taken from the actor,
// never from the payload, and the voting sets start empty.
func (s *ruleService) Create(rule *model.Rule, actor Actor) (*model.Rule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = 0
	rule.CreatedBy = actor.Username
	rule.BasisOfRecord = lo.Uniq(rule.BasisOfRecord)
	rule.SupportedBy = datatypes.JSONSlice[string]{}
	rule.ContestedBy = datatypes.JSONSlice[string]{}
	rule.Modified = nil
	rule.ModifiedBy = nil
	rule.Deleted = nil
	rule.DeletedBy = nil
	if err := s.db.Create(rule).Error; err != nil {
		return nil, err
	}
	return s.Get(rule.ID)
}

// Update replaces the scope and constraint fields of an existing,
// non-deleted rule. Only the creator or an admin may update; voting state
// and provenance are not touched.
func (s *ruleService) Update(id uint, in *model.Rule, actor Actor) (*model.Rule, error) {
	if err := validateRule(in); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := getRule(tx, id)
		if err != nil {
			return err
		}
		if existing.Deleted != nil {
			return fmt.Errorf("cannot update a deleted rule: %w", ErrInvalidState)
		}
		if err := AssertCreatorOrAdmin(existing.CreatedBy, actor); err != nil {
			return err
		}
		now := time.Now()
		existing.TaxonKey = in.TaxonKey
		existing.DatasetKey = in.DatasetKey
		existing.RulesetID = in.RulesetID
		existing.ProjectID = in.ProjectID
		existing.Annotation = in.Annotation
		existing.BasisOfRecord = lo.Uniq(in.BasisOfRecord)
		existing.BasisOfRecordNegated = in.BasisOfRecordNegated
		existing.YearRange = in.YearRange
		existing.Geometry = in.Geometry
		existing.Modified = &now
		existing.ModifiedBy = &actor.Username
		return tx.Save(existing).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete marks the rule deleted. Repeating the call is a no-op that
// returns the rule as already deleted.
func (s *ruleService) Delete(id uint, actor Actor) (*model.Rule, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := getRule(tx, id)
		if err != nil {
			return err
		}
		if err := AssertCreatorOrAdmin(existing.CreatedBy, actor); err != nil {
			return err
		}
		if existing.Deleted != nil {
			return nil
		}
		now := time.Now()
		return tx.Model(existing).Updates(map[string]any{
			"deleted":    &now,
			"deleted_by": actor.Username,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// DeleteByProject cascades a logical delete to every rule scoped to the
// project. Authorization happened at the project level, so no per-rule
// guard applies here.
func (s *ruleService) DeleteByProject(projectID uint, actingUser string) error {
	now := time.Now()
	return s.db.Model(&model.Rule{}).
		Where("project_id = ?", projectID).
		Where("deleted IS NULL").
		Updates(map[string]any{
			"deleted":    &now,
			"deleted_by": actingUser,
		}).Error
}

// Support moves the user to the supporters, leaving the contesters. The
// removal and the addition commit as one transaction so no reader ever
// sees the user in both sets.
func (s *ruleService) Support(id uint, username string) (*model.Rule, error) {
	return s.transition(id, func(r *model.Rule) {
		r.SupportedBy = lo.Uniq(append(r.SupportedBy, username))
		r.ContestedBy = lo.Without(r.ContestedBy, username)
	})
}

// RemoveSupport is an idempotent no-op when the user is not supporting.
func (s *ruleService) RemoveSupport(id uint, username string) (*model.Rule, error) {
	return s.transition(id, func(r *model.Rule) {
		r.SupportedBy = lo.Without(r.SupportedBy, username)
	})
}

// Contest is the mirror image of Support.
func (s *ruleService) Contest(id uint, username string) (*model.Rule, error) {
	return s.transition(id, func(r *model.Rule) {
		r.ContestedBy = lo.Uniq(append(r.ContestedBy, username))
		r.SupportedBy = lo.Without(r.SupportedBy, username)
	})
}

// RemoveContest is an idempotent no-op when the user is not contesting.
func (s *ruleService) RemoveContest(id uint, username string) (*model.Rule, error) {
	return s.transition(id, func(r *model.Rule) {
		r.ContestedBy = lo.Without(r.ContestedBy, username)
	})
}

func (s *ruleService) transition(id uint, apply func(*model.Rule)) (*model.Rule, error) {
	var out model.Rule
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rule, err := getRule(tx, id)
		if err != nil {
			return err
		}
		if rule.Deleted != nil {
			return fmt.Errorf("cannot vote on a deleted rule: %w", ErrInvalidState)
		}
		apply(rule)
		if err := tx.Model(rule).Updates(map[string]any{
			"supported_by": rule.SupportedBy,
			"contested_by": rule.ContestedBy,
		}).Error; err != nil {
			return err
		}
		out = *rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics computes the aggregate counts over non-deleted rules matching
// the scope. Project membership is counted over projects alone: with no
// username there is no membership to count and the field stays zero.
func (s *ruleService) Metrics(f MetricsFilter) (*model.RuleMetrics, error) {
	base := func() *gorm.DB {
		q := s.db.Model(&model.Rule{}).Where("deleted IS NULL")
		if f.Username != "" {
			q = q.Where("created_by = ?", f.Username)
		}
		if f.TaxonKey != nil {
			q = q.Where("taxon_key = ?", *f.TaxonKey)
		}
		if f.DatasetKey != "" {
			if f.DatasetKey == rulefilter.Null {
				q = q.Where("dataset_key IS NULL")
			} else {
				q = q.Where("dataset_key = ?", f.DatasetKey)
			}
		}
		if f.RulesetID != nil {
			q = q.Where("ruleset_id = ?", *f.RulesetID)
		}
		if f.ProjectID != nil {
			q = q.Where("project_id = ?", *f.ProjectID)
		}
		return q
	}

	var m model.RuleMetrics
	if err := base().Count(&m.RuleCount).Error; err != nil {
		return nil, err
	}
	if err := base().Where("dataset_key IS NOT NULL").Distinct("dataset_key").Count(&m.DatasetCount).Error; err != nil {
		return nil, err
	}
	if err := base().Where("taxon_key IS NOT NULL").Distinct("taxon_key").Count(&m.TaxonCount).Error; err != nil {
		return nil, err
	}

	if f.Username != "" {
		var projects []model.Project
		if err := s.db.Where("deleted IS NULL").Find(&projects).Error; err != nil {
			return nil, err
		}
		m.ProjectCount = int64(lo.CountBy(projects, func(p model.Project) bool {
			return p.CreatedBy == f.Username || lo.Contains(p.Members, f.Username)
		}))
	}
	return &m, nil
}

func getRule(tx *gorm.DB, id uint) (*model.Rule, error) {
	var rule model.Rule
	if err := tx.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rule %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &rule, nil
}

// validateRule checks the payload fields that carry syntax: the annotation
// value, the yearRange text and the geometry WKT. Invalid values are
// rejected up front so stored rules are always comparable by the filter.
func validateRule(rule *model.Rule) error {
	if !rule.Annotation.Valid() {
		return &rulefilter.ValidationError{Field: "annotation", Reason: fmt.Sprintf("unknown value %q", rule.Annotation)}
	}
	if rule.YearRange != nil {
		if _, err := rulefilter.ParseYearRange(*rule.YearRange); err != nil {
			return err
		}
	}
	if rule.Geometry != nil {
		if err := rulefilter.ValidateGeometry(*rule.Geometry); err != nil {
			return err
		}
	}
	return nil
}
