package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolfit_backend/internals/features/school/files/model"
)

type FileProcessResponse struct {
	FileProcessID     uuid.UUID  `json:"file_process_id"`
	Nature            string     `json:"nature"`
	Status            string     `json:"status"`
	OriginalFileName  string     `json:"original_file_name"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewFileProcessResponse(m *model.FileProcessModel) FileProcessResponse {
	return FileProcessResponse{
		FileProcessID:    m.FileProcessID,
		Nature:           m.FileProcessNature,
		Status:           m.FileProcessStatus,
		OriginalFileName: m.FileProcessOriginalFileName,
		StartDate:        m.FileProcessStartDate,
		EndDate:          m.FileProcessEndDate,
		CreatedAt:        m.FileProcessCreatedAt,
	}
}

type FileProcessMessageResponse struct {
	Severity  string    `json:"severity"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFileProcessMessageResponse(m *model.FileProcessMessageModel) FileProcessMessageResponse {
	return FileProcessMessageResponse{
		Severity:  m.FileProcessMessageSeverity,
		Text:      m.FileProcessMessageText,
		CreatedAt: m.FileProcessMessageCreatedAt,
	}
}

type FileProcessDetailResponse struct {
	FileProcessResponse
	Messages []FileProcessMessageResponse `json:"messages"`
}
