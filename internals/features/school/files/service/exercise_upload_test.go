package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfit_backend/internals/constants"
	"schoolfit_backend/internals/features/fitness/grading"
	recordModel "schoolfit_backend/internals/features/school/records/model"
)

func exerciseCells(t *testing.T) (map[string]int, []string) {
	t.Helper()
	idx := HeaderIndex(constants.TestUploadHeaders)
	cells := make([]string, len(constants.TestUploadHeaders))
	cells[idx["年级编号"]] = "3"
	cells[idx["班级名称"]] = "2班"
	cells[idx["姓名"]] = "张三"
	cells[idx["性别"]] = "男"
	cells[idx["身高(cm)"]] = "140"
	cells[idx["体重(kg)"]] = "30"
	cells[idx["肺活量(ml)"]] = "2200"
	return idx, cells
}

// Exercise rows are matched by name and class, not by student number,
// so an empty 学籍号 must still parse.
func TestParseMeasureRowWithoutStudentNumber(t *testing.T) {
	idx, cells := exerciseCells(t)

	row, err := parseMeasureRow(idx, cells, 1)
	require.NoError(t, err)
	assert.Empty(t, row.internalID)
	assert.Equal(t, "三年级", row.yearLabel)

	cells[idx["姓名"]] = ""
	_, err = parseMeasureRow(idx, cells, 1)
	assert.Error(t, err)
}

func TestBuildExerciseRecords(t *testing.T) {
	tables, err := grading.Load()
	require.NoError(t, err)

	idx, cells := exerciseCells(t)
	row, err := parseMeasureRow(idx, cells, 1)
	require.NoError(t, err)

	records, err := buildExerciseRecords(tables, row, constants.SchoolTypePrimary)
	require.NoError(t, err)

	byMeasure := make(map[string]recordModel.RecordModel, len(records))
	for _, r := range records {
		assert.Equal(t, recordModel.RecordNatureExercise, r.RecordNature)
		assert.True(t, r.RecordInSchool)
		assert.Nil(t, r.RecordFitnessTestID)
		byMeasure[r.RecordMeasure] = r
	}

	// Height and weight are kept raw, never scored.
	height := byMeasure[constants.MeasureHeight]
	require.NotNil(t, height.RecordScore)
	assert.Equal(t, 140.0, *height.RecordScore)
	assert.Nil(t, height.RecordNormalizedScore)
	assert.Nil(t, height.RecordGrade)

	// BMI is derived from them and graded categorically.
	bmi := byMeasure[constants.MeasureBMI]
	require.NotNil(t, bmi.RecordScore)
	assert.Equal(t, 15.3, *bmi.RecordScore)
	require.NotNil(t, bmi.RecordNormalizedScore)
	require.NotNil(t, bmi.RecordGrade)

	// A bracketed measure gets a normalized score and a letter grade.
	vital := byMeasure[constants.MeasureVitalCap]
	require.NotNil(t, vital.RecordNormalizedScore)
	require.NotNil(t, vital.RecordGrade)
}

// Columns outside the student's gender or school-year applicability
// never produce a record.
func TestBuildExerciseRecordsSkipsInapplicable(t *testing.T) {
	tables, err := grading.Load()
	require.NoError(t, err)

	idx, cells := exerciseCells(t)
	cells[idx["引体向上(个)"]] = "8"
	row, err := parseMeasureRow(idx, cells, 1)
	require.NoError(t, err)

	records, err := buildExerciseRecords(tables, row, constants.SchoolTypePrimary)
	require.NoError(t, err)
	for _, r := range records {
		assert.NotEqual(t, constants.MeasurePullUps, r.RecordMeasure)
	}
}
