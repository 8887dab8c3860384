package model

import (
	"github.com/google/uuid"
)

// Denormalized year/class labels, 1:1 with a classification. Year is
// stored in canonical form ("一年级".."六年级"); class passes through as
// uploaded. Teachers overseeing a whole year leave class null; a
// director overseeing the whole school leaves both null.
type ClassificationMapModel struct {
	ClassificationMapID               uuid.UUID `gorm:"column:classification_map_id;type:uuid;default:gen_random_uuid();primaryKey" json:"classification_map_id"`
	ClassificationMapClassificationID uuid.UUID `gorm:"column:classification_map_classification_id;type:uuid;not null;uniqueIndex" json:"classification_map_classification_id"`

	ClassificationMapYear  *string `gorm:"column:classification_map_year;type:varchar(16)" json:"classification_map_year,omitempty"`
	ClassificationMapClass *string `gorm:"column:classification_map_class;type:varchar(32)" json:"classification_map_class,omitempty"`
}

func (ClassificationMapModel) TableName() string { return "classification_maps" }
