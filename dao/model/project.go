package model

import (
	"time"

	"gorm.io/datatypes"
)

// Project groups rules and carries membership. The creator is always a
// member. Deleting a project logically deletes every rule scoped to it.
type Project struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"type:varchar(128);not null" json:"name"`
	Description *string                     `gorm:"type:text" json:"description,omitempty"`
	Members     datatypes.JSONSlice[string] `json:"members"`

	Created    time.Time  `gorm:"autoCreateTime" json:"created"`
	CreatedBy  string     `gorm:"index;type:varchar(64);not null" json:"createdBy"`
	Modified   *time.Time `json:"modified,omitempty"`
	ModifiedBy *string    `gorm:"type:varchar(64)" json:"modifiedBy,omitempty"`
	Deleted    *time.Time `json:"deleted,omitempty"`
	DeletedBy  *string    `gorm:"type:varchar(64)" json:"deletedBy,omitempty"`
}
