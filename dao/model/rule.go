package model

import (
	"time"

	"gorm.io/datatypes"
)

// Rule is an annotation proposal scoping occurrence records by taxon,
// dataset, time, place and record type. Rules are never hard-deleted:
// Deleted/DeletedBy mark a logical delete and the row stays readable by id.
type Rule struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Scope
	TaxonKey   *int64  `gorm:"index" json:"taxonKey,omitempty"`
	DatasetKey *string `gorm:"index;type:varchar(64)" json:"datasetKey,omitempty"`
	RulesetID  *uint   `gorm:"index" json:"rulesetId,omitempty"`
	ProjectID  *uint   `gorm:"index" json:"projectId,omitempty"`

	Annotation Annotation `gorm:"type:varchar(32);not null" json:"annotation"`

	// Constraints. BasisOfRecordNegated is only meaningful when
	// BasisOfRecord is set; YearRange is the textual "<lo>,<hi>" form with
	// '*' for an unbounded side; Geometry is a WKT polygon.
	BasisOfRecord        datatypes.JSONSlice[string] `json:"basisOfRecord,omitempty"`
	BasisOfRecordNegated bool                        `gorm:"not null;default:false" json:"basisOfRecordNegated"`
	YearRange            *string                     `gorm:"type:varchar(16)" json:"yearRange,omitempty"`
	Geometry             *string                     `gorm:"type:text" json:"geometry,omitempty"`

	// Voting. A user appears in at most one of the two sets.
	SupportedBy datatypes.JSONSlice[string] `json:"supportedBy"`
	ContestedBy datatypes.JSONSlice[string] `json:"contestedBy"`

	Created    time.Time  `gorm:"autoCreateTime" json:"created"`
	CreatedBy  string     `gorm:"index;type:varchar(64);not null" json:"createdBy"`
	Modified   *time.Time `json:"modified,omitempty"`
	ModifiedBy *string    `gorm:"type:varchar(64)" json:"modifiedBy,omitempty"`
	Deleted    *time.Time `json:"deleted,omitempty"`
	DeletedBy  *string    `gorm:"type:varchar(64)" json:"deletedBy,omitempty"`
}

// RuleMetrics aggregates counts over a filter scope. It is derived, never
// persisted, and always carries zeroes rather than being absent.
type RuleMetrics struct {
	RuleCount    int64 `json:"ruleCount"`
	ProjectCount int64 `json:"projectCount"`
	DatasetCount int64 `json:"datasetCount"`
	TaxonCount   int64 `json:"taxonCount"`
}
