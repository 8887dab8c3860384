package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/school/files/model"
)

// jobTracker is the bookkeeping shared by both upload pipelines:
// process rows, status transitions and the message log.
type jobTracker struct {
	db *gorm.DB
}

func (t *jobTracker) createProcess(ctx context.Context, nature string, requestedBy, fileID uuid.UUID, fileName, status string) (*model.FileProcessModel, error) {
	process := model.FileProcessModel{
		FileProcessNature:            nature,
		FileProcessStatus:            status,
		FileProcessFileID:            fileID,
		FileProcessRequestedByEntity: requestedBy,
		FileProcessOriginalFileName:  fileName,
	}
	if err := t.db.WithContext(ctx).Create(&process).Error; err != nil {
		return nil, fmt.Errorf("persist process row: %w", err)
	}
	return &process, nil
}

func (t *jobTracker) markProcessing(ctx context.Context, processID uuid.UUID, startedAt time.Time) error {
	return t.db.WithContext(ctx).Model(&model.FileProcessModel{}).
		Where("file_process_id = ?", processID).
		Updates(map[string]any{
			"file_process_status":     model.FileProcessStatusProcessing,
			"file_process_start_date": startedAt,
		}).Error
}

func (t *jobTracker) finishProcess(ctx context.Context, processID uuid.UUID, status string) error {
	return t.db.WithContext(ctx).Model(&model.FileProcessModel{}).
		Where("file_process_id = ?", processID).
		Updates(map[string]any{
			"file_process_status":   status,
			"file_process_end_date": time.Now(),
		}).Error
}

func (t *jobTracker) markFailed(ctx context.Context, processID uuid.UUID) {
	if err := t.finishProcess(ctx, processID, model.FileProcessStatusFailed); err != nil {
		log.Printf("[UPLOAD] mark process %s failed: %v", processID, err)
	}
}

// addMessage appends to the job's message log. Logging failures must
// never abort row processing, so errors only hit the server log.
func (t *jobTracker) addMessage(ctx context.Context, processID uuid.UUID, severity, text string) {
	msg := model.FileProcessMessageModel{
		FileProcessMessageProcessID: processID,
		FileProcessMessageText:      text,
		FileProcessMessageSeverity:  severity,
	}
	if err := t.db.WithContext(ctx).Create(&msg).Error; err != nil {
		log.Printf("[UPLOAD] add %s message to %s: %v", severity, processID, err)
	}
}
