package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gbif/occurrence-annotation/dao/model"
)

// CommentService owns comment CRUD. Comments belong to a rule but their
// lifecycle is independent of voting.
type CommentService interface {
	List(ruleID uint) ([]model.Comment, error)
	Get(id uint) (*model.Comment, error)
	Create(comment *model.Comment, actor Actor) (*model.Comment, error)
	Delete(id uint, actor Actor) error
}

type commentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) CommentService {
	return &commentService{db: db}
}

// List returns the non-deleted comments of a rule in id order.
func (s *commentService) List(ruleID uint) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := s.db.Where("rule_id = ?", ruleID).Where("deleted IS NULL").Order("id").Find(&comments).Error
	return comments, err
}

func (s *commentService) Get(id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// Create attaches a comment to an existing, non-deleted rule. The creator
// comes from the actor, never from the payload.
func (s *commentService) Create(comment *model.Comment, actor Actor) (*model.Comment, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rule, err := getRule(tx, comment.RuleID)
		if err != nil {
			return err
		}
		if rule.Deleted != nil {
			return fmt.Errorf("cannot comment on a deleted rule: %w", ErrInvalidState)
		}
		comment.ID = 0
		comment.CreatedBy = actor.Username
		comment.Deleted = nil
		comment.DeletedBy = nil
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(comment.ID)
}

// Delete marks the comment deleted; creator or admin only, idempotent.
func (s *commentService) Delete(id uint, actor Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Comment
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("comment %d: %w", id, ErrNotFound)
			}
			return err
		}
		if err := AssertCreatorOrAdmin(existing.CreatedBy, actor); err != nil {
			return err
		}
		if existing.Deleted != nil {
			return nil
		}
		now := time.Now()
		return tx.Model(&existing).Updates(map[string]any{
			"deleted":    &now,
			"deleted_by": actor.Username,
		}).Error
	})
}
