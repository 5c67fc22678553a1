package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gbif/occurrence-annotation/dao/model"
)

// ProjectService owns project CRUD. Updates are member-gated rather than
// creator-gated; deletes fall back to the creator-or-admin guard.
type ProjectService interface {
	List() ([]model.Project, error)
	Get(id uint) (*model.Project, error)
	Create(project *model.Project, actor Actor) (*model.Project, error)
	Update(id uint, project *model.Project, actor Actor) (*model.Project, error)
	Delete(id uint, actor Actor) (*model.Project, error)
}

type projectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) ProjectService {
	return &projectService{db: db}
}

func (s *projectService) List() ([]model.Project, error) {
	projects := []model.Project{}
	err := s.db.Where("deleted IS NULL").Order("id").Find(&projects).Error
	return projects, err
}

// Get returns the project even when logically deleted.
func (s *projectService) Get(id uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &project, nil
}

// Create persists a new project. The creator is recorded server-side and
// starts as the sole member regardless of the payload.
func (s *projectService) Create(project *model.Project, actor Actor) (*model.Project, error) {
	project.ID = 0
	project.CreatedBy = actor.Username
	project.Members = datatypes.JSONSlice[string]{actor.Username}
	project.Modified = nil
	project.ModifiedBy = nil
	project.Deleted = nil
	project.DeletedBy = nil
	if err := s.db.Create(project).Error; err != nil {
		return nil, err
	}
	return s.Get(project.ID)
}

// Update lets any current member change the project, as long as the
// result keeps at least one member.
func (s *projectService) Update(id uint, in *model.Project, actor Actor) (*model.Project, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := getProject(tx, id)
		if err != nil {
			return err
		}
		if existing.Deleted != nil {
			return fmt.Errorf("cannot update a deleted project: %w", ErrInvalidState)
		}
		if !lo.Contains(existing.Members, actor.Username) {
			return fmt.Errorf("user %q is not a member of project %d: %w", actor.Username, id, ErrForbidden)
		}
		if len(in.Members) == 0 {
			return fmt.Errorf("project must have at least one member: %w", ErrInvalidState)
		}
		now := time.Now()
		existing.Name = in.Name
		existing.Description = in.Description
		existing.Members = lo.Uniq(in.Members)
		existing.Modified = &now
		existing.ModifiedBy = &actor.Username
		return tx.Save(existing).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete marks the project deleted; repeating the call is a no-op. The
// caller is responsible for cascading the delete to the project's rules.
func (s *projectService) Delete(id uint, actor Actor) (*model.Project, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := getProject(tx, id)
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

func getProject(tx *gorm.DB, id uint) (*model.Project, error) {
	var project model.Project
	if err := tx.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &project, nil
}
