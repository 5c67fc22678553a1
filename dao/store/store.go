// Package store holds the persistence services for annotation rules,
// projects, comments and users, backed by GORM.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/gbif/occurrence-annotation/dao/model"
	"github.com/gbif/occurrence-annotation/pkg/config"
)

// DB is the shared connection, set once by InitDB.
var DB *gorm.DB

var (
	// ErrNotFound reports an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden reports a failed creator-or-admin check.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState reports a mutation of a resource whose lifecycle
	// state does not allow it, e.g. updating a deleted rule.
	ErrInvalidState = errors.New("invalid state")
)

// Actor identifies the authenticated user performing an operation. It is
// threaded into every mutating call; nothing reads an ambient user.
type Actor struct {
	Username string
	Role     model.Role
}

// Admin reports whether the actor carries the administrator role.
func (a Actor) Admin() bool {
	return a.Role == model.RoleAdmin
}

// AssertCreatorOrAdmin succeeds when the actor created the resource or is
// an administrator. Used uniformly on rule, comment and project deletes.
func AssertCreatorOrAdmin(createdBy string, actor Actor) error {
	if actor.Username == createdBy || actor.Admin() {
		return nil
	}
	return fmt.Errorf("user %q is neither creator nor admin: %w", actor.Username, ErrForbidden)
}

// InitDB opens the Postgres connection from configuration.
func InitDB(conf *config.Config) error {
	pg := conf.Postgres
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		pg.Host, pg.User, pg.Password, pg.DBName, pg.Port, pg.SSLMode, pg.TimeZone)
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	klog.Info("postgres init success")
	return nil
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20260115-initial-schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.Project{},
					&model.Rule{},
					&model.Comment{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("comments", "rules", "projects", "users")
			},
		},
	})
	return m.Migrate()
}
