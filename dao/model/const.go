// Constants shared by the database models.
// Gin rejects zero values for fields tagged `required`, so enum-like
// constants start at iota + 1 to keep the zero value out of the valid set.
package model

// Role of a user on the platform.
type Role uint8

const (
	RoleGuest Role = iota + 1
	RoleUser
	RoleAdmin
)

// Annotation classifies how occurrence records within a rule's scope
// should be interpreted.
type Annotation string

const (
	AnnotationNative     Annotation = "NATIVE"
	AnnotationIntroduced Annotation = "INTRODUCED"
	AnnotationVagrant    Annotation = "VAGRANT"
	AnnotationManaged    Annotation = "MANAGED"
	AnnotationFormer     Annotation = "FORMER"
	AnnotationSuspicious Annotation = "SUSPICIOUS"
)

// Valid reports whether a is one of the known annotation values.
func (a Annotation) Valid() bool {
	switch a {
	case AnnotationNative, AnnotationIntroduced, AnnotationVagrant,
		AnnotationManaged, AnnotationFormer, AnnotationSuspicious:
		return true
	}
	return false
}

// BasisOfRecordValues follows the GBIF vocabulary for record types.
var BasisOfRecordValues = []string{
	"PRESERVED_SPECIMEN",
	"FOSSIL_SPECIMEN",
	"LIVING_SPECIMEN",
	"OBSERVATION",
	"HUMAN_OBSERVATION",
	"MACHINE_OBSERVATION",
	"MATERIAL_SAMPLE",
	"MATERIAL_CITATION",
	"OCCURRENCE",
}
