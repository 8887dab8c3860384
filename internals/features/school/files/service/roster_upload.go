package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"schoolfit_backend/internals/constants"
	classModel "schoolfit_backend/internals/features/school/classification/model"
	"schoolfit_backend/internals/features/school/files/model"
	accountService "schoolfit_backend/internals/features/users/account/service"
	accountModel "schoolfit_backend/internals/features/users/account/model"
)

// Fraction of permanently failed rows above which the whole job is
// marked failed instead of completed.
const failureThreshold = 0.05

// UploadResult is the synchronous answer to an upload request. All
// later progress is observed by polling the process ID.
type UploadResult struct {
	ProcessID uuid.UUID `json:"process_id"`
	Status    string    `json:"status"`
}

type RosterUploadService struct {
	jobTracker
	storage  FileStorage
	parser   TabularParser
	queue    *TaskQueue
	accounts accountService.AccountProvisioner

	// Pause before the retry pass over failed rows.
	retryDelay time.Duration
}

func NewRosterUploadService(db *gorm.DB, storage FileStorage, parser TabularParser, queue *TaskQueue, accounts accountService.AccountProvisioner) *RosterUploadService {
	return &RosterUploadService{
		jobTracker: jobTracker{db: db},
		storage:    storage,
		parser:     parser,
		queue:      queue,
		accounts:   accounts,
		retryDelay: 5 * time.Second,
	}
}

type rosterRow struct {
	line       int // 1-indexed data row, header excluded
	year       string
	class      string
	name       string
	gender     string
	internalID string
	idCard     string
}

// Upload is the synchronous phase: persist the blob, parse, validate
// the header, create the tracking job and hand row processing to the
// background queue. Parse or header failures still leave a pollable
// failed job behind.
func (s *RosterUploadService) Upload(ctx context.Context, requestedBy, schoolID uuid.UUID, fileName string, data []byte, fromYear, toYear int) (*UploadResult, error) {
	path, err := s.storage.Store(ctx, fileName, data)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	storageRow := model.FileStorageModel{FileStoragePath: path}
	if err := s.db.WithContext(ctx).Create(&storageRow).Error; err != nil {
		return nil, fmt.Errorf("persist storage row: %w", err)
	}

	rows, parseErr := s.parser.Parse(data)
	if parseErr == nil {
		parseErr = ValidateHeader(rows[0], constants.RosterUploadHeaders)
	}
	if parseErr != nil {
		process, err := s.createProcess(ctx, model.FileRequestNatureStudentInfo, requestedBy, storageRow.FileStorageID, fileName, model.FileProcessStatusFailed)
		if err != nil {
			return nil, err
		}
		s.addMessage(ctx, process.FileProcessID, model.FileProcessMessageSeverityError, parseErr.Error())
		return &UploadResult{ProcessID: process.FileProcessID, Status: model.FileProcessStatusFailed}, nil
	}

	process, err := s.createProcess(ctx, model.FileRequestNatureStudentInfo, requestedBy, storageRow.FileStorageID, fileName, model.FileProcessStatusPending)
	if err != nil {
		return nil, err
	}

	processID := process.FileProcessID
	task := Task{
		Name: "roster:" + processID.String(),
		Run: func(taskCtx context.Context) error {
			return s.processRoster(taskCtx, processID, schoolID, rows, fromYear, toYear)
		},
		OnError: func(taskCtx context.Context, taskErr error) {
			s.markFailed(taskCtx, processID)
			s.addMessage(taskCtx, processID, model.FileProcessMessageSeverityError, "processing aborted by an internal error")
		},
	}
	if err := s.queue.Submit(task); err != nil {
		s.markFailed(ctx, processID)
		return nil, err
	}
	return &UploadResult{ProcessID: processID, Status: model.FileProcessStatusPending}, nil
}

// processRoster is the asynchronous phase: one transaction per row,
// a single retry pass over failures, then the threshold decision.
func (s *RosterUploadService) processRoster(ctx context.Context, processID, schoolID uuid.UUID, rows [][]string, fromYear, toYear int) error {
	started := time.Now()
	if err := s.markProcessing(ctx, processID, started); err != nil {
		return err
	}

	windowFrom, windowTo := constants.AcademicWindow(fromYear, toYear)
	idx := HeaderIndex(rows[0])
	dataRows := rows[1:]

	var added, skipped int
	var failedRows []rosterRow

	for i, cells := range dataRows {
		row := rosterRow{
			line:       i + 1,
			year:       constants.MapYearLabel(cells[idx["年级"]]),
			class:      cells[idx["班级"]],
			name:       cells[idx["姓名"]],
			gender:     cells[idx["性别"]],
			internalID: cells[idx["教育ID"]],
			idCard:     cells[idx["身份证件号码"]],
		}
		outcome, err := s.processRosterRow(ctx, schoolID, row, windowFrom, windowTo)
		if err != nil {
			log.Printf("[ROSTER] process %s row %d failed: %v", processID, row.line, err)
			failedRows = append(failedRows, row)
			continue
		}
		if outcome == rowSkipped {
			skipped++
			s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning, coveredSkipMessage(row, fromYear, toYear))
			continue
		}
		added++
	}

	// One retry pass after a pause; second failures are permanent.
	var permanent []rosterRow
	if len(failedRows) > 0 {
		time.Sleep(s.retryDelay)
		for _, row := range failedRows {
			outcome, err := s.processRosterRow(ctx, schoolID, row, windowFrom, windowTo)
			if err != nil {
				permanent = append(permanent, row)
				s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning,
					fmt.Sprintf("row %d (%s, %s) failed twice: %v", row.line, row.name, row.internalID, err))
				continue
			}
			if outcome == rowSkipped {
				skipped++
				s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning, coveredSkipMessage(row, fromYear, toYear))
				continue
			}
			added++
		}
	}

	status := jobOutcome(len(permanent), len(dataRows))
	s.addMessage(ctx, processID, model.FileProcessMessageSeverityInfo,
		fmt.Sprintf("roster import finished: %d added, %d skipped, %d failed, %.0fs elapsed", added, skipped, len(permanent), time.Since(started).Seconds()))
	return s.finishProcess(ctx, processID, status)
}

// coveredSkipMessage is the warning attached to a process whenever a
// row is skipped because a live classification already spans the
// requested window. Both the first pass and the retry pass emit it.
func coveredSkipMessage(row rosterRow, fromYear, toYear int) string {
	return fmt.Sprintf("row %d (%s, %s): classification already covers %d-%d, skipped",
		row.line, row.name, row.internalID, fromYear, toYear)
}

type rowOutcome int

const (
	rowAdded rowOutcome = iota
	rowSkipped
)

// processRosterRow runs exactly one row in its own transaction. An
// error rolls back only this row.
func (s *RosterUploadService) processRosterRow(ctx context.Context, schoolID uuid.UUID, row rosterRow, windowFrom, windowTo time.Time) (rowOutcome, error) {
	if row.internalID == "" || row.name == "" {
		return rowAdded, fmt.Errorf("missing internal ID or name")
	}

	outcome := rowAdded
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entityID, err := s.findEntity(tx, schoolID, row.internalID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entityID, err = s.accounts.CreateAccount(ctx, tx, accountService.AccountProfile{
				Name:         row.name,
				InternalID:   row.internalID,
				Gender:       row.gender,
				IDCardNumber: row.idCard,
				SchoolID:     schoolID,
			})
			if err != nil {
				return err
			}
			perm := accountModel.PermissionModel{
				PermissionEntityID: entityID,
				CanAccessSameEntityInternalIDInClassification: true,
			}
			if err := tx.Create(&perm).Error; err != nil {
				return fmt.Errorf("create default permission: %w", err)
			}
		} else if err != nil {
			return err
		}

		covered, err := s.hasCoveringClassification(tx, entityID, schoolID, windowFrom, windowTo)
		if err != nil {
			return err
		}
		if covered {
			outcome = rowSkipped
			return nil
		}

		classification := classModel.ClassificationModel{
			ClassificationEntityID:  entityID,
			ClassificationSchoolID:  schoolID,
			ClassificationValidFrom: windowFrom,
			ClassificationValidTo:   &windowTo,
		}
		if err := tx.Create(&classification).Error; err != nil {
			// A concurrent upload won the race for the same window.
			// The error aborts the transaction, so the skip is
			// decided after rollback.
			if isUniqueViolation(err) {
				return errWindowTaken
			}
			return fmt.Errorf("create classification: %w", err)
		}

		classMap := classModel.ClassificationMapModel{
			ClassificationMapClassificationID: classification.ClassificationID,
		}
		if row.year != "" {
			classMap.ClassificationMapYear = &row.year
		}
		if row.class != "" {
			classMap.ClassificationMapClass = &row.class
		}
		if err := tx.Create(&classMap).Error; err != nil {
			return fmt.Errorf("create classification map: %w", err)
		}
		return nil
	})
	if errors.Is(err, errWindowTaken) {
		return rowSkipped, nil
	}
	if err != nil {
		return rowAdded, err
	}
	return outcome, nil
}

var errWindowTaken = errors.New("classification window already taken")

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// findEntity locates an entity by its school internal ID, joined
// through classifications so the same internal ID at another school
// never matches.
func (s *RosterUploadService) findEntity(tx *gorm.DB, schoolID uuid.UUID, internalID string) (uuid.UUID, error) {
	var entity accountModel.EntityModel
	err := tx.
		Joins("JOIN classifications ON classifications.classification_entity_id = entities.entity_id").
		Where("entities.entity_internal_id = ? AND classifications.classification_school_id = ?", internalID, schoolID).
		First(&entity).Error
	if err != nil {
		return uuid.Nil, err
	}
	return entity.EntityID, nil
}

func (s *RosterUploadService) hasCoveringClassification(tx *gorm.DB, entityID, schoolID uuid.UUID, windowFrom, windowTo time.Time) (bool, error) {
	var count int64
	err := tx.Model(&classModel.ClassificationModel{}).
		Where("classification_entity_id = ? AND classification_school_id = ?", entityID, schoolID).
		Where("classification_valid_from <= ?", windowFrom).
		Where("classification_valid_to IS NULL OR classification_valid_to >= ?", windowTo).
		Count(&count).Error
	return count > 0, err
}

// jobOutcome is the threshold decision over permanent row failures.
func jobOutcome(permanentFailures, totalRows int) string {
	if totalRows > 0 && float64(permanentFailures)/float64(totalRows) > failureThreshold {
		return model.FileProcessStatusFailed
	}
	return model.FileProcessStatusCompleted
}
