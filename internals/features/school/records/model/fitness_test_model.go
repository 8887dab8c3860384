package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// One row per whole-school test date. The JSON columns accumulate
// per-class summaries ({year: {class: [avg, grade, passRate, ...]}})
// and which year/class combinations each upload pass already covered.
type FitnessTestModel struct {
	FitnessTestID       uuid.UUID `gorm:"column:fitness_test_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fitness_test_id"`
	FitnessTestSchoolID uuid.UUID `gorm:"column:fitness_test_school_id;type:uuid;not null;index" json:"fitness_test_school_id"`
	FitnessTestName     string    `gorm:"column:fitness_test_name;type:varchar(160);not null" json:"fitness_test_name"`
	FitnessTestDate     time.Time `gorm:"column:fitness_test_date;not null" json:"fitness_test_date"`

	MainUploadClassSummaries datatypes.JSON `gorm:"column:main_upload_class_summaries;type:jsonb;not null;default:'{}'" json:"main_upload_class_summaries"`
	RedoUploadClassSummaries datatypes.JSON `gorm:"column:redo_upload_class_summaries;type:jsonb;not null;default:'{}'" json:"redo_upload_class_summaries"`
	MainUploadClassesDone    datatypes.JSON `gorm:"column:main_upload_classes_done;type:jsonb;not null;default:'{}'" json:"main_upload_classes_done"`
	RedoUploadClassesDone    datatypes.JSON `gorm:"column:redo_upload_classes_done;type:jsonb;not null;default:'{}'" json:"redo_upload_classes_done"`

	FitnessTestCreatedAt time.Time `gorm:"column:fitness_test_created_at;not null;autoCreateTime" json:"fitness_test_created_at"`
	FitnessTestUpdatedAt time.Time `gorm:"column:fitness_test_updated_at;not null;autoUpdateTime" json:"fitness_test_updated_at"`
}

func (FitnessTestModel) TableName() string { return "fitness_tests" }
