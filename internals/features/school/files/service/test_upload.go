package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolfit_backend/internals/constants"
	"schoolfit_backend/internals/features/fitness/grading"
	classModel "schoolfit_backend/internals/features/school/classification/model"
	"schoolfit_backend/internals/features/school/files/model"
	recordModel "schoolfit_backend/internals/features/school/records/model"
)

// Records are inserted in batches of this size.
const recordInsertBatch = 2000

// TestUploadService ingests whole-school test-result exports, scores
// every measurement against the grading tables and accumulates
// per-class summaries on the fitness test row.
type TestUploadService struct {
	jobTracker
	storage FileStorage
	parser  TabularParser
	queue   *TaskQueue
	tables  *grading.Store

	retryDelay time.Duration
}

func NewTestUploadService(db *gorm.DB, storage FileStorage, parser TabularParser, queue *TaskQueue, tables *grading.Store) *TestUploadService {
	return &TestUploadService{
		jobTracker: jobTracker{db: db},
		storage:    storage,
		parser:     parser,
		queue:      queue,
		tables:     tables,
		retryDelay: 5 * time.Second,
	}
}

// Upload is the synchronous phase, mirroring the roster pipeline but
// validated against the test-export header list.
func (s *TestUploadService) Upload(ctx context.Context, requestedBy, schoolID, fitnessTestID uuid.UUID, fileName string, data []byte, isRedo bool) (*UploadResult, error) {
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
		process, err := s.createProcess(ctx, model.FileRequestNatureSchoolTest, requestedBy, storageRow.FileStorageID, fileName, model.FileProcessStatusFailed)
		if err != nil {
			return nil, err
		}
		s.addMessage(ctx, process.FileProcessID, model.FileProcessMessageSeverityError, parseErr.Error())
		return &UploadResult{ProcessID: process.FileProcessID, Status: model.FileProcessStatusFailed}, nil
	}

	process, err := s.createProcess(ctx, model.FileRequestNatureSchoolTest, requestedBy, storageRow.FileStorageID, fileName, model.FileProcessStatusPending)
	if err != nil {
		return nil, err
	}

	processID := process.FileProcessID
	task := Task{
		Name: "schooltest:" + processID.String(),
		Run: func(taskCtx context.Context) error {
			return s.processTest(taskCtx, processID, schoolID, fitnessTestID, rows, isRedo)
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

type testRow struct {
	line       int
	yearLabel  string
	className  string
	name       string
	gender     string
	internalID string
	height     float64
	weight     float64
	scores     map[string]float64 // measure name -> raw value
}

type classKey struct {
	year  string
	class string
}

type classAccumulator struct {
	students int
	sumTotal float64
	passed   int
}

func (s *TestUploadService) processTest(ctx context.Context, processID, schoolID, fitnessTestID uuid.UUID, rows [][]string, isRedo bool) error {
	started := time.Now()
	if err := s.markProcessing(ctx, processID, started); err != nil {
		return err
	}

	var school classModel.SchoolModel
	if err := s.db.WithContext(ctx).Where("school_id = ?", schoolID).First(&school).Error; err != nil {
		return fmt.Errorf("load school: %w", err)
	}
	var test recordModel.FitnessTestModel
	if err := s.db.WithContext(ctx).Where("fitness_test_id = ?", fitnessTestID).First(&test).Error; err != nil {
		return fmt.Errorf("load fitness test: %w", err)
	}

	idx := HeaderIndex(rows[0])
	dataRows := rows[1:]

	var records []recordModel.RecordModel
	classes := make(map[classKey]*classAccumulator)
	var processed int
	var failedRows [][]string
	var failedLines []int

	for i, cells := range dataRows {
		recs, key, total, err := s.processTestRow(ctx, schoolID, school.SchoolType, test.FitnessTestDate, idx, cells, i+1, isRedo, fitnessTestID)
		if err != nil {
			log.Printf("[SCHOOLTEST] process %s row %d failed: %v", processID, i+1, err)
			failedRows = append(failedRows, cells)
			failedLines = append(failedLines, i+1)
			continue
		}
		records = append(records, recs...)
		s.accumulate(classes, key, total)
		processed++
	}

	var permanent int
	if len(failedRows) > 0 {
		time.Sleep(s.retryDelay)
		for j, cells := range failedRows {
			recs, key, total, err := s.processTestRow(ctx, schoolID, school.SchoolType, test.FitnessTestDate, idx, cells, failedLines[j], isRedo, fitnessTestID)
			if err != nil {
				permanent++
				s.addMessage(ctx, processID, model.FileProcessMessageSeverityWarning,
					fmt.Sprintf("row %d (%s, %s) failed twice: %v", failedLines[j], cells[idx["姓名"]], cells[idx["学籍号"]], err))
				continue
			}
			records = append(records, recs...)
			s.accumulate(classes, key, total)
			processed++
		}
	}

	if len(records) > 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.CreateInBatches(records, recordInsertBatch).Error; err != nil {
				return fmt.Errorf("insert records: %w", err)
			}
			return s.mergeClassSummaries(tx, &test, classes, isRedo)
		})
		if err != nil {
			return err
		}
	}

	status := jobOutcome(permanent, len(dataRows))
	s.addMessage(ctx, processID, model.FileProcessMessageSeverityInfo,
		fmt.Sprintf("test import finished: %d students scored, %d records, %d failed, %.0fs elapsed", processed, len(records), permanent, time.Since(started).Seconds()))
	return s.finishProcess(ctx, processID, status)
}

// processTestRow scores one student: BMI from height and weight, then
// every applicable score column through its bracket table. Returns
// the records, the student's class key and their weighted total.
func (s *TestUploadService) processTestRow(ctx context.Context, schoolID uuid.UUID, schoolType string, testDate time.Time, idx map[string]int, cells []string, line int, isRedo bool, fitnessTestID uuid.UUID) ([]recordModel.RecordModel, classKey, float64, error) {
	row, err := parseTestRow(idx, cells, line)
	if err != nil {
		return nil, classKey{}, 0, err
	}

	classificationID, err := s.findClassification(ctx, schoolID, row.internalID, testDate)
	if err != nil {
		return nil, classKey{}, 0, fmt.Errorf("student %s (%s): %w", row.name, row.internalID, err)
	}

	var results []grading.MeasureResult
	var records []recordModel.RecordModel

	newRecord := func(measure string, raw float64) recordModel.RecordModel {
		score := raw
		return recordModel.RecordModel{
			RecordMeasure:              measure,
			RecordNature:               recordModel.RecordNatureTest,
			RecordInSchool:             true,
			RecordFitnessTestID:        &fitnessTestID,
			RecordScore:                &score,
			RecordIsRedoOrMissing:      isRedo,
			RecordToClassificationID:   classificationID,
			RecordFromClassificationID: classificationID,
		}
	}

	// Height and weight are stored raw and scored only through BMI.
	if row.height > 0 && row.weight > 0 {
		records = append(records, newRecord(constants.MeasureHeight, row.height))
		records = append(records, newRecord(constants.MeasureWeight, row.weight))

		bmi := computeBMI(row.height, row.weight)
		bmiScore, err := s.tables.ResolveBMI(bmi, row.gender, schoolType, row.yearLabel)
		if err != nil {
			return nil, classKey{}, 0, err
		}
		rec := newRecord(constants.MeasureBMI, bmi)
		normalized := bmiScore.NormalizedScore
		grade := bmiScore.Grade
		rec.RecordNormalizedScore = &normalized
		rec.RecordGrade = &grade
		records = append(records, rec)
		results = append(results, grading.MeasureResult{Measure: constants.MeasureBMI, NormalizedScore: normalized})
	}

	for measure, raw := range row.scores {
		mt, ok := s.tables.MeasureType(measure)
		if !ok {
			return nil, classKey{}, 0, fmt.Errorf("unknown measure %q", measure)
		}
		if !mt.ApplicableToGender(row.gender) || !mt.ApplicableToSchoolYear(schoolType, row.yearLabel) {
			continue
		}

		score, err := s.tables.ResolveScore(raw, measure, row.gender, schoolType, row.yearLabel, mt.CompareDirection)
		if err != nil {
			return nil, classKey{}, 0, err
		}

		rec := newRecord(measure, raw)
		normalized := score.NormalizedScore
		grade := s.tables.Classify(normalized)
		rec.RecordNormalizedScore = &normalized
		rec.RecordGrade = &grade
		if score.BonusScore > 0 {
			bonus := score.BonusScore
			rec.RecordAdditionalScore = &bonus
		}
		records = append(records, rec)
		results = append(results, grading.MeasureResult{
			Measure:         measure,
			NormalizedScore: normalized,
			BonusScore:      score.BonusScore,
		})
	}

	total := grading.Aggregate(results, schoolType, row.yearLabel)
	return records, classKey{year: row.yearLabel, class: row.className}, total, nil
}

// parseTestRow additionally insists on the student number, which the
// test pipeline matches classifications by.
func parseTestRow(idx map[string]int, cells []string, line int) (*testRow, error) {
	row, err := parseMeasureRow(idx, cells, line)
	if err != nil {
		return nil, err
	}
	if row.internalID == "" {
		return nil, fmt.Errorf("missing student number")
	}
	return row, nil
}

func parseMeasureRow(idx map[string]int, cells []string, line int) (*testRow, error) {
	row := &testRow{
		line:       line,
		yearLabel:  constants.MapYearLabel(cells[idx["年级编号"]]),
		className:  cells[idx["班级名称"]],
		name:       cells[idx["姓名"]],
		gender:     cells[idx["性别"]],
		internalID: cells[idx["学籍号"]],
		scores:     make(map[string]float64),
	}
	if row.name == "" {
		return nil, fmt.Errorf("missing student name")
	}

	var err error
	if raw := cells[idx["身高(cm)"]]; raw != "" {
		if row.height, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("bad height %q", raw)
		}
	}
	if raw := cells[idx["体重(kg)"]]; raw != "" {
		if row.weight, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("bad weight %q", raw)
		}
	}

	for _, header := range constants.TestUploadHeaders[constants.TestUploadScoreOffset:] {
		measure := MeasureFromHeader(header)
		if measure == constants.MeasureHeight || measure == constants.MeasureWeight {
			continue
		}
		raw := cells[idx[header]]
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s value %q", measure, raw)
		}
		row.scores[measure] = value
	}
	return row, nil
}

// MeasureFromHeader strips the parenthesized unit from an export
// column name ("肺活量(ml)" -> "肺活量"). Both ASCII and full-width
// parentheses appear in real exports.
func MeasureFromHeader(header string) string {
	if i := strings.IndexAny(header, "(（"); i >= 0 {
		return header[:i]
	}
	return header
}

// computeBMI uses meters and rounds to one decimal place, the same
// precision the categorical tables are published in.
func computeBMI(heightCM, weightKG float64) float64 {
	meters := heightCM / 100
	return math.Round(weightKG/(meters*meters)*10) / 10
}

// findClassification picks the student's classification whose
// validity window covers the test date.
func (s *TestUploadService) findClassification(ctx context.Context, schoolID uuid.UUID, internalID string, testDate time.Time) (uuid.UUID, error) {
	var classification classModel.ClassificationModel
	err := s.db.WithContext(ctx).
		Joins("JOIN entities ON entities.entity_id = classifications.classification_entity_id").
		Where("entities.entity_internal_id = ? AND classifications.classification_school_id = ?", internalID, schoolID).
		Where("classifications.classification_valid_from <= ?", testDate).
		Where("classifications.classification_valid_to IS NULL OR classifications.classification_valid_to >= ?", testDate).
		First(&classification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("no classification covering the test date, roster import may be missing")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return classification.ClassificationID, nil
}

func (s *TestUploadService) accumulate(classes map[classKey]*classAccumulator, key classKey, total float64) {
	acc, ok := classes[key]
	if !ok {
		acc = &classAccumulator{}
		classes[key] = acc
	}
	acc.students++
	acc.sumTotal += total
	if s.tables.Classify(total) != "不及格" {
		acc.passed++
	}
}

type classSummary struct {
	Students int     `json:"students"`
	AvgScore float64 `json:"avg_score"`
	PassRate float64 `json:"pass_rate"`
	Grade    string  `json:"grade"`
}

// mergeClassSummaries folds this upload's per-class aggregates into
// the fitness test's JSON columns, keeping main and redo passes in
// separate columns.
func (s *TestUploadService) mergeClassSummaries(tx *gorm.DB, test *recordModel.FitnessTestModel, classes map[classKey]*classAccumulator, isRedo bool) error {
	summariesCol, doneCol := "main_upload_class_summaries", "main_upload_classes_done"
	summariesRaw, doneRaw := test.MainUploadClassSummaries, test.MainUploadClassesDone
	if isRedo {
		summariesCol, doneCol = "redo_upload_class_summaries", "redo_upload_classes_done"
		summariesRaw, doneRaw = test.RedoUploadClassSummaries, test.RedoUploadClassesDone
	}

	summaries := map[string]map[string]classSummary{}
	if len(summariesRaw) > 0 {
		if err := sonic.Unmarshal(summariesRaw, &summaries); err != nil {
			return fmt.Errorf("decode class summaries: %w", err)
		}
	}
	done := map[string][]string{}
	if len(doneRaw) > 0 {
		if err := sonic.Unmarshal(doneRaw, &done); err != nil {
			return fmt.Errorf("decode classes done: %w", err)
		}
	}

	for key, acc := range classes {
		if summaries[key.year] == nil {
			summaries[key.year] = map[string]classSummary{}
		}
		avg := acc.sumTotal / float64(acc.students)
		summaries[key.year][key.class] = classSummary{
			Students: acc.students,
			AvgScore: math.Round(avg*10) / 10,
			PassRate: math.Round(float64(acc.passed)/float64(acc.students)*1000) / 1000,
			Grade:    s.tables.Classify(avg),
		}
		if !containsString(done[key.year], key.class) {
			done[key.year] = append(done[key.year], key.class)
		}
	}

	summariesJSON, err := sonic.Marshal(summaries)
	if err != nil {
		return err
	}
	doneJSON, err := sonic.Marshal(done)
	if err != nil {
		return err
	}
	return tx.Model(&recordModel.FitnessTestModel{}).
		Where("fitness_test_id = ?", test.FitnessTestID).
		Updates(map[string]any{
			summariesCol: datatypes.JSON(summariesJSON),
			doneCol:      datatypes.JSON(doneJSON),
		}).Error
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
