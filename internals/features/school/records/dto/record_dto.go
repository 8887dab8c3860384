package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolfit_backend/internals/features/school/records/model"
)

type CreateFitnessTestRequest struct {
	SchoolID uuid.UUID `json:"school_id" validate:"required"`
	Name     string    `json:"name" validate:"required,min=2,max=160"`
	Date     time.Time `json:"date" validate:"required"`
}

type FitnessTestResponse struct {
	FitnessTestID uuid.UUID `json:"fitness_test_id"`
	SchoolID      uuid.UUID `json:"school_id"`
	Name          string    `json:"name"`
	Date          time.Time `json:"date"`

	MainUploadClassSummaries any `json:"main_upload_class_summaries,omitempty"`
	RedoUploadClassSummaries any `json:"redo_upload_class_summaries,omitempty"`
}

func NewFitnessTestResponse(m *model.FitnessTestModel, withSummaries bool) FitnessTestResponse {
	resp := FitnessTestResponse{
		FitnessTestID: m.FitnessTestID,
		SchoolID:      m.FitnessTestSchoolID,
		Name:          m.FitnessTestName,
		Date:          m.FitnessTestDate,
	}
	if withSummaries {
		resp.MainUploadClassSummaries = m.MainUploadClassSummaries
		resp.RedoUploadClassSummaries = m.RedoUploadClassSummaries
	}
	return resp
}

type RecordResponse struct {
	RecordID         uuid.UUID  `json:"record_id"`
	Measure          string     `json:"measure"`
	Nature           string     `json:"nature"`
	ClassificationID uuid.UUID  `json:"classification_id"`
	FitnessTestID    *uuid.UUID `json:"fitness_test_id,omitempty"`
	ExerciseDate     *time.Time `json:"exercise_date,omitempty"`
	Score            *float64   `json:"score,omitempty"`
	NormalizedScore  *float64   `json:"normalized_score,omitempty"`
	AdditionalScore  *float64   `json:"additional_score,omitempty"`
	Grade            *string    `json:"grade,omitempty"`
	IsRedoOrMissing  bool       `json:"is_redo_or_missing"`
	CreatedAt        time.Time  `json:"created_at"`
}

func NewRecordResponse(m *model.RecordModel) RecordResponse {
	return RecordResponse{
		RecordID:         m.RecordID,
		Measure:          m.RecordMeasure,
		Nature:           m.RecordNature,
		ClassificationID: m.RecordToClassificationID,
		FitnessTestID:    m.RecordFitnessTestID,
		ExerciseDate:     m.RecordExerciseDate,
		Score:            m.RecordScore,
		NormalizedScore:  m.RecordNormalizedScore,
		AdditionalScore:  m.RecordAdditionalScore,
		Grade:            m.RecordGrade,
		IsRedoOrMissing:  m.RecordIsRedoOrMissing,
		CreatedAt:        m.RecordCreatedAt,
	}
}

// StudentReportResponse is the aggregated view over one
// classification's test records.
type StudentReportResponse struct {
	ClassificationID uuid.UUID        `json:"classification_id"`
	Year             *string          `json:"year,omitempty"`
	TotalScore       float64          `json:"total_score"`
	OverallGrade     string           `json:"overall_grade"`
	Measures         []RecordResponse `json:"measures"`
}
