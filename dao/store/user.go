package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gbif/occurrence-annotation/dao/model"
)

// UserService backs login and signup.
type UserService interface {
	Create(user *model.User) error
	GetByName(name string) (*model.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Create(user *model.User) error {
	return s.db.Create(user).Error
}

func (s *userService) GetByName(name string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}
