package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FileProcessMessageSeverityInfo    = "info"
	FileProcessMessageSeverityWarning = "warning"
	FileProcessMessageSeverityError   = "error"
)

// Ordered, timestamped, severity-tagged log attached to a file
// process. Granular outcomes (skipped duplicates, permanently failed
// rows, summaries) are delivered here, never as one error string.
type FileProcessMessageModel struct {
	FileProcessMessageID        uuid.UUID `gorm:"column:file_process_message_id;type:uuid;default:gen_random_uuid();primaryKey" json:"file_process_message_id"`
	FileProcessMessageProcessID uuid.UUID `gorm:"column:file_process_message_process_id;type:uuid;not null;index" json:"file_process_message_process_id"`

	FileProcessMessageText     string `gorm:"column:file_process_message_text;type:text;not null" json:"file_process_message_text"`
	FileProcessMessageSeverity string `gorm:"column:file_process_message_severity;type:varchar(8);not null" json:"file_process_message_severity"`

	FileProcessMessageCreatedAt time.Time `gorm:"column:file_process_message_created_at;not null;autoCreateTime" json:"file_process_message_created_at"`
}

func (FileProcessMessageModel) TableName() string { return "file_process_messages" }
