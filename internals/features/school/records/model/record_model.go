package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RecordNatureTest     = "test"
	RecordNatureExercise = "exercise"
)

// One measurement or exercise-log entry. A null score means the
// student did not attempt the measure — callers distinguish "scored
// zero" from "did not participate" by this, never by the total.
type RecordModel struct {
	RecordID      uuid.UUID `gorm:"column:record_id;type:uuid;default:gen_random_uuid();primaryKey" json:"record_id"`
	RecordMeasure string    `gorm:"column:record_measure;type:varchar(40);not null;index" json:"record_measure"`
	RecordNature  string    `gorm:"column:record_nature;type:varchar(16);not null;default:test" json:"record_nature"`
	RecordInSchool bool     `gorm:"column:record_in_school;not null;default:false" json:"record_in_school"`

	RecordFitnessTestID *uuid.UUID `gorm:"column:record_fitness_test_id;type:uuid;index" json:"record_fitness_test_id,omitempty"`

	// Set only on exercise-log entries; the calendar day the exercise
	// session took place.
	RecordExerciseDate *time.Time `gorm:"column:record_exercise_date;type:date" json:"record_exercise_date,omitempty"`

	RecordScore           *float64 `gorm:"column:record_score" json:"record_score,omitempty"`
	RecordNormalizedScore *float64 `gorm:"column:record_normalized_score" json:"record_normalized_score,omitempty"`
	RecordAdditionalScore *float64 `gorm:"column:record_additional_score" json:"record_additional_score,omitempty"`
	RecordGrade           *string  `gorm:"column:record_grade;type:varchar(16)" json:"record_grade,omitempty"`

	// Redo/makeup uploads are kept apart from the main test pass.
	RecordIsRedoOrMissing bool `gorm:"column:record_is_redo_or_missing;not null;default:false" json:"record_is_redo_or_missing"`

	RecordToClassificationID   uuid.UUID `gorm:"column:record_to_classification_id;type:uuid;not null;index" json:"record_to_classification_id"`
	RecordFromClassificationID uuid.UUID `gorm:"column:record_from_classification_id;type:uuid;not null" json:"record_from_classification_id"`

	RecordCreatedAt time.Time `gorm:"column:record_created_at;not null;autoCreateTime" json:"record_created_at"`
	RecordUpdatedAt time.Time `gorm:"column:record_updated_at;not null;autoUpdateTime" json:"record_updated_at"`
}

func (RecordModel) TableName() string { return "records" }
