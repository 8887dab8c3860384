package model

import (
	"time"

	"github.com/google/uuid"
)

// A classification is a time-scoped assignment of an entity to a
// school. An entity can hold many classifications (promotion across
// years), but at most one may be open or cover any given instant —
// the ingestion pipeline checks for a covering window before insert.
// The unique index on (entity, school, valid_from) backstops two
// concurrent uploads racing that check for the same window.
type ClassificationModel struct {
	ClassificationID       uuid.UUID `gorm:"column:classification_id;type:uuid;default:gen_random_uuid();primaryKey" json:"classification_id"`
	ClassificationEntityID uuid.UUID `gorm:"column:classification_entity_id;type:uuid;not null;index;uniqueIndex:uq_classification_window" json:"classification_entity_id"`
	ClassificationSchoolID uuid.UUID `gorm:"column:classification_school_id;type:uuid;not null;index;uniqueIndex:uq_classification_window" json:"classification_school_id"`

	ClassificationValidFrom time.Time  `gorm:"column:classification_valid_from;not null;uniqueIndex:uq_classification_window" json:"classification_valid_from"`
	ClassificationValidTo   *time.Time `gorm:"column:classification_valid_to" json:"classification_valid_to,omitempty"` // null = open-ended

	ClassificationCreatedAt time.Time `gorm:"column:classification_created_at;not null;autoCreateTime" json:"classification_created_at"`
	ClassificationUpdatedAt time.Time `gorm:"column:classification_updated_at;not null;autoUpdateTime" json:"classification_updated_at"`
}

func (ClassificationModel) TableName() string { return "classifications" }

// ActiveAt reports whether the validity window covers t.
func (m *ClassificationModel) ActiveAt(t time.Time) bool {
	if t.Before(m.ClassificationValidFrom) {
		return false
	}
	return m.ClassificationValidTo == nil || !m.ClassificationValidTo.Before(t)
}

// Covers reports whether this classification's window fully contains
// [from, to]. Used by ingestion to skip duplicate rows.
func (m *ClassificationModel) Covers(from, to time.Time) bool {
	if m.ClassificationValidFrom.After(from) {
		return false
	}
	return m.ClassificationValidTo == nil || !m.ClassificationValidTo.Before(to)
}
