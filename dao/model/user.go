package model

import "gorm.io/gorm"

// User is the basic account entity. Passwords are stored as bcrypt hashes.
type User struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;type:varchar(64);not null"`
	Password string `gorm:"type:varchar(128);not null"`
	Role     Role   `gorm:"not null"`
}
