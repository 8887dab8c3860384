package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfit_backend/internals/constants"
	"schoolfit_backend/internals/features/fitness/grading"
	classModel "schoolfit_backend/internals/features/school/classification/model"
	"schoolfit_backend/internals/features/school/files/model"
	recordModel "schoolfit_backend/internals/features/school/records/model"
)

var (
	errStudentUnmatched = errors.New("no active classification matches the student")
	errStudentAmbiguous = errors.New("multiple enrolled students match the row")
)

// ExerciseUploadService ingests daily exercise-session logs. The file
// shares the test-export layout, but rows carry no student number:
// students are matched by name, gender, year and class against the
// currently active classifications, and the resulting records are
// tagged with the session date instead of a fitness test.
type ExerciseUploadService struct {
	jobTracker
	storage FileStorage
	parser  TabularParser
	queue   *TaskQueue
	tables  *grading.Store

	retryDelay time.Duration
}

func NewExerciseUploadService(db *gorm.DB, storage FileStorage, parser TabularParser, queue *TaskQueue, tables *grading.Store) *ExerciseUploadService {
	return &ExerciseUploadService{
		jobTracker: jobTracker{db: db},
		storage:    storage,
		parser:     parser,
		queue:      queue,
		tables:     tables,
		retryDelay: 5 * time.Second,
	}
}

// Upload is the synchronous phase. recordedBy is the uploader's own
// classification; it is stamped on every record as the source.
func (s *ExerciseUploadService) Upload(ctx context.Context, requestedBy, schoolID, recordedBy uuid.UUID, exerciseDate time.Time, fileName string, data []byte) (*UploadResult, error) {
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
		parseErr = ValidateHeader(rows[0], constants.TestUploadHeaders)
	}
	if parseErr != nil {
		process, err := s.createProcess(ctx, model.FileRequestNatureSchoolExercise, requestedBy, storageRow.FileStorageID, fileName, model.FileProcessStatusFailed)
		if err != nil {
			return nil, err
		}
		s.addMessage(ctx, process.FileProcessID, model.FileProcessMessageSeverityError, parseErr.Error())
		return &UploadResult{ProcessID: process.FileProcessID, Status: model.FileProcessStatusFailed}, nil
	}

	process, err := s.createProcess(ctx, model.FileRequestNatureSchoolExercise, requestedBy, storageRow.FileStorageID, fileName, model.FileProcessStatusPending)
	if err != nil {
		return nil, err
	}

	processID := process.FileProcessID
	task := Task{
		Name: "schoolexercise:" + processID.String(),
		Run: func(taskCtx context.Context) error {
			return s.processExercise(taskCtx, processID, schoolID, recordedBy, exerciseDate, rows)
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

func (s *ExerciseUploadService) processExercise(ctx context.Context, processID, schoolID, recordedBy uuid.UUID, exerciseDate time.Time, rows [][]string) error {
	started := time.Now()
	if err := s.markProcessing(ctx, processID, started); err != nil {
		return err
	}

	var school classModel.SchoolModel
	if err := s.db.WithContext(ctx).Where("school_id = ?", schoolID).First(&school).Error; err != nil {
		return fmt.Errorf("load school: %w", err)
	}

	idx := HeaderIndex(rows[0])
	dataRows := rows[1:]

	var records []recordModel.RecordModel
	var processed, skipped int
	var failedRows [][]string
	var failedLines []int

	for i, cells := range dataRows {
		recs, err := s.processExerciseRow(ctx, schoolID, school.SchoolType, recordedBy, exerciseDate, idx, cells, i+1)
		if errors.Is(err, errStudentUnmatched) || errors.Is(err, errStudentAmbiguous) {
			skipped++
			s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning,
				fmt.Sprintf("row %d (%s): %v, skipped", i+1, strings.Join(cells, ", "), err))
			continue
		}
		if err != nil {
			log.Printf("[SCHOOLEXERCISE] process %s row %d failed: %v", processID, i+1, err)
			failedRows = append(failedRows, cells)
			failedLines = append(failedLines, i+1)
			continue
		}
		records = append(records, recs...)
		processed++
	}

	var permanent int
	if len(failedRows) > 0 {
		time.Sleep(s.retryDelay)
		for j, cells := range failedRows {
			recs, err := s.processExerciseRow(ctx, schoolID, school.SchoolType, recordedBy, exerciseDate, idx, cells, failedLines[j])
			if errors.Is(err, errStudentUnmatched) || errors.Is(err, errStudentAmbiguous) {
				skipped++
				s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning,
					fmt.Sprintf("row %d (%s): %v, skipped", failedLines[j], strings.Join(cells, ", "), err))
				continue
			}
			if err != nil {
				permanent++
				s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning,
					fmt.Sprintf("row %d (%s, %s) failed twice: %v", failedLines[j], cells[idx["班级名称"]], cells[idx["姓名"]], err))
				continue
			}
			records = append(records, recs...)
			processed++
		}
	}

	// Too many permanent failures abandon the whole batch: nothing is
	// inserted, so a corrected re-upload cannot double-count.
	status := jobOutcome(permanent, len(dataRows))
	if status == model.FileProcessStatusFailed {
		s.addMessage(ctx, processID, model.FileProcessMessageSeverityError,
			fmt.Sprintf("exercise import abandoned: %d of %d rows failed, no records written", permanent, len(dataRows)))
		return s.finishProcess(ctx, processID, status)
	}

	if len(records) == 0 {
		s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning, "no exercise records produced by this file")
	} else {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.CreateInBatches(records, recordInsertBatch).Error
		})
		if err != nil {
			return err
		}
	}

	s.addMessage(ctx, processID, model.FileProcessMessageSeverityInfo,
		fmt.Sprintf("exercise import finished: %d students logged, %d records, %d skipped, %d failed, %.0fs elapsed",
			processed, len(records), skipped, permanent, time.Since(started).Seconds()))
	return s.finishProcess(ctx, processID, status)
}

// processExerciseRow turns one student's row into exercise records:
// height and weight raw, BMI scored, then every applicable score
// column. Columns without a published bracket table keep only the raw
// value.
func (s *ExerciseUploadService) processExerciseRow(ctx context.Context, schoolID uuid.UUID, schoolType string, recordedBy uuid.UUID, exerciseDate time.Time, idx map[string]int, cells []string, line int) ([]recordModel.RecordModel, error) {
	row, err := parseMeasureRow(idx, cells, line)
	if err != nil {
		return nil, err
	}

	toID, err := s.matchStudent(ctx, schoolID, row)
	if err != nil {
		return nil, err
	}

	records, err := buildExerciseRecords(s.tables, row, schoolType)
	if err != nil {
		return nil, err
	}
	date := exerciseDate
	for i := range records {
		records[i].RecordExerciseDate = &date
		records[i].RecordToClassificationID = toID
		records[i].RecordFromClassificationID = recordedBy
	}
	return records, nil
}

// buildExerciseRecords is the pure scoring half of the row pipeline,
// shared with tests. Classification wiring and the session date are
// filled in by the caller.
func buildExerciseRecords(tables *grading.Store, row *testRow, schoolType string) ([]recordModel.RecordModel, error) {
	var records []recordModel.RecordModel

	newRecord := func(measure string, raw float64) recordModel.RecordModel {
		score := raw
		return recordModel.RecordModel{
			RecordMeasure:  measure,
			RecordNature:   recordModel.RecordNatureExercise,
			RecordInSchool: true,
			RecordScore:    &score,
		}
	}

	if row.height > 0 && row.weight > 0 {
		records = append(records, newRecord(constants.MeasureHeight, row.height))
		records = append(records, newRecord(constants.MeasureWeight, row.weight))

		bmi := computeBMI(row.height, row.weight)
		bmiScore, err := tables.ResolveBMI(bmi, row.gender, schoolType, row.yearLabel)
		if err != nil {
			return nil, err
		}
		rec := newRecord(constants.MeasureBMI, bmi)
		normalized := bmiScore.NormalizedScore
		grade := bmiScore.Grade
		rec.RecordNormalizedScore = &normalized
		rec.RecordGrade = &grade
		records = append(records, rec)
	}

	for measure, raw := range row.scores {
		mt, ok := tables.MeasureType(measure)
		if !ok {
			return nil, fmt.Errorf("unknown measure %q", measure)
		}
		if !mt.ApplicableToGender(row.gender) || !mt.ApplicableToSchoolYear(schoolType, row.yearLabel) {
			continue
		}

		rec := newRecord(measure, raw)
		if !mt.IsReported {
			records = append(records, rec)
			continue
		}

		score, err := tables.ResolveScore(raw, measure, row.gender, schoolType, row.yearLabel, mt.CompareDirection)
		if err != nil {
			return nil, err
		}
		normalized := score.NormalizedScore
		grade := tables.Classify(normalized)
		rec.RecordNormalizedScore = &normalized
		rec.RecordGrade = &grade
		if score.BonusScore > 0 {
			bonus := score.BonusScore
			rec.RecordAdditionalScore = &bonus
		}
		records = append(records, rec)
	}
	return records, nil
}

type exerciseCandidate struct {
	classModel.ClassificationModel
	EntityInternalID string
}

// matchStudent finds the classification an exercise row belongs to.
// Rows carry no student number, so the match is by name, gender, year
// and class, restricted to classifications still active today. No
// match skips the row; several matches pointing at different student
// numbers are unresolvable and skip it too.
func (s *ExerciseUploadService) matchStudent(ctx context.Context, schoolID uuid.UUID, row *testRow) (uuid.UUID, error) {
	var candidates []exerciseCandidate
	err := s.db.WithContext(ctx).
		Table("classifications").
		Select("classifications.*, entities.entity_internal_id").
		Joins("JOIN entities ON entities.entity_id = classifications.classification_entity_id").
		Joins("JOIN classification_maps ON classification_maps.classification_map_classification_id = classifications.classification_id").
		Where("classifications.classification_school_id = ?", schoolID).
		Where("entities.entity_name = ? AND entities.entity_gender = ?", row.name, row.gender).
		Where("classification_maps.classification_map_year = ? AND classification_maps.classification_map_class = ?", row.yearLabel, row.className).
		Scan(&candidates).Error
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	active := candidates[:0]
	for _, c := range candidates {
		if c.ActiveAt(now) {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return uuid.Nil, errStudentUnmatched
	}
	for _, c := range active[1:] {
		if c.EntityInternalID != active[0].EntityInternalID {
			return uuid.Nil, errStudentAmbiguous
		}
	}
	return active[0].ClassificationID, nil
}
