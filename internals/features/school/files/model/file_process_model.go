package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FileProcessStatusPending    = "pending"
	FileProcessStatusProcessing = "processing"
	FileProcessStatusCompleted  = "completed"
	FileProcessStatusFailed     = "failed"
)

const (
	FileRequestNatureStudentInfo    = "studentInfo"
	FileRequestNatureSchoolTest     = "schoolTest"
	FileRequestNatureSchoolExercise = "schoolExercise"
)

// Tracks one upload. Created synchronously before row processing
// starts; mutated only by the background task afterwards. Callers
// observe progress by polling.
type FileProcessModel struct {
	FileProcessID     uuid.UUID `gorm:"column:file_process_id;type:uuid;default:gen_random_uuid();primaryKey" json:"file_process_id"`
	FileProcessNature string    `gorm:"column:file_process_nature;type:varchar(24);not null" json:"file_process_nature"`
	FileProcessStatus string    `gorm:"column:file_process_status;type:varchar(16);not null;default:pending;index" json:"file_process_status"`

	FileProcessFileID            uuid.UUID `gorm:"column:file_process_file_id;type:uuid;not null" json:"file_process_file_id"`
	FileProcessRequestedByEntity uuid.UUID `gorm:"column:file_process_requested_by_entity;type:uuid;not null;index" json:"file_process_requested_by_entity"`
	FileProcessOriginalFileName  string    `gorm:"column:file_process_original_file_name;type:varchar(255);not null" json:"file_process_original_file_name"`

	FileProcessStartDate *time.Time `gorm:"column:file_process_start_date" json:"file_process_start_date,omitempty"`
	FileProcessEndDate   *time.Time `gorm:"column:file_process_end_date" json:"file_process_end_date,omitempty"`

	FileProcessCreatedAt time.Time `gorm:"column:file_process_created_at;not null;autoCreateTime" json:"file_process_created_at"`
	FileProcessUpdatedAt time.Time `gorm:"column:file_process_updated_at;not null;autoUpdateTime" json:"file_process_updated_at"`
}

func (FileProcessModel) TableName() string { return "file_processes" }
