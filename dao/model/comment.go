package model

import "time"

// Comment is free text attached to a rule. Comments share the logical
// delete convention of rules but have a lifecycle independent of voting.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	RuleID  uint   `gorm:"index;not null" json:"ruleId"`
	Comment string `gorm:"type:text;not null" json:"comment"`

	Created   time.Time  `gorm:"autoCreateTime" json:"created"`
	CreatedBy string     `gorm:"type:varchar(64);not null" json:"createdBy"`
	Deleted   *time.Time `json:"deleted,omitempty"`
	DeletedBy *string    `gorm:"type:varchar(64)" json:"deletedBy,omitempty"`
}
