package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfit_backend/internals/constants"
	"schoolfit_backend/internals/features/school/files/model"
)

func TestValidateHeader(t *testing.T) {
	exact := append([]string{}, constants.RosterUploadHeaders...)
	assert.NoError(t, ValidateHeader(exact, constants.RosterUploadHeaders))

	// Column order does not matter, only the set.
	reordered := []string{"姓名", "年级", "班级", "性别", "身份证件号码", "教育ID"}
	assert.NoError(t, ValidateHeader(reordered, constants.RosterUploadHeaders))

	short := constants.RosterUploadHeaders[:5]
	assert.Error(t, ValidateHeader(short, constants.RosterUploadHeaders))

	extra := append(append([]string{}, constants.RosterUploadHeaders...), "备注")
	assert.Error(t, ValidateHeader(extra, constants.RosterUploadHeaders))

	renamed := append([]string{}, constants.RosterUploadHeaders...)
	renamed[2] = "学生姓名"
	assert.Error(t, ValidateHeader(renamed, constants.RosterUploadHeaders))
}

func TestJobOutcomeThreshold(t *testing.T) {
	// 1 of 40 is 2.5%, inside tolerance.
	assert.Equal(t, model.FileProcessStatusCompleted, jobOutcome(1, 40))
	// 2 of 40 is exactly 5%, still inside.
	assert.Equal(t, model.FileProcessStatusCompleted, jobOutcome(2, 40))
	// 3 of 40 is 7.5%.
	assert.Equal(t, model.FileProcessStatusFailed, jobOutcome(3, 40))

	assert.Equal(t, model.FileProcessStatusCompleted, jobOutcome(0, 0))
	assert.Equal(t, model.FileProcessStatusCompleted, jobOutcome(0, 1))
	assert.Equal(t, model.FileProcessStatusFailed, jobOutcome(1, 1))
}

func TestCoveredSkipMessage(t *testing.T) {
	row := rosterRow{line: 7, name: "张三", internalID: "E1234"}
	assert.Equal(t,
		"row 7 (张三, E1234): classification already covers 2025-2026, skipped",
		coveredSkipMessage(row, 2025, 2026))
}

func TestMeasureFromHeader(t *testing.T) {
	assert.Equal(t, "肺活量", MeasureFromHeader("肺活量(ml)"))
	assert.Equal(t, "50米跑", MeasureFromHeader("50米跑(s)"))
	// Full-width parenthesis shows up in real exports.
	assert.Equal(t, "一分钟跳绳", MeasureFromHeader("一分钟跳绳(个）"))
	assert.Equal(t, "体重指数", MeasureFromHeader("体重指数（BMI）"))
	assert.Equal(t, "姓名", MeasureFromHeader("姓名"))
}

func TestComputeBMI(t *testing.T) {
	// 30kg at 1.40m = 15.306..., published tables use one decimal.
	assert.Equal(t, 15.3, computeBMI(140, 30))
	assert.Equal(t, 20.8, computeBMI(120, 30))
}

func TestParseTestRow(t *testing.T) {
	idx := HeaderIndex(constants.TestUploadHeaders)
	cells := make([]string, len(constants.TestUploadHeaders))
	cells[idx["年级编号"]] = "3"
	cells[idx["班级名称"]] = "2班"
	cells[idx["学籍号"]] = "G20230101"
	cells[idx["姓名"]] = "张三"
	cells[idx["性别"]] = "男"
	cells[idx["身高(cm)"]] = "140"
	cells[idx["体重(kg)"]] = "30"
	cells[idx["肺活量(ml)"]] = "2200"
	cells[idx["50米跑(s)"]] = "9.5"

	row, err := parseTestRow(idx, cells, 1)
	require.NoError(t, err)
	assert.Equal(t, "三年级", row.yearLabel)
	assert.Equal(t, "2班", row.className)
	assert.Equal(t, 140.0, row.height)
	assert.Equal(t, 30.0, row.weight)
	assert.Equal(t, map[string]float64{
		constants.MeasureVitalCap: 2200,
		constants.MeasureDash50m:  9.5,
	}, row.scores)
}

func TestParseTestRowRejectsMalformed(t *testing.T) {
	idx := HeaderIndex(constants.TestUploadHeaders)
	cells := make([]string, len(constants.TestUploadHeaders))
	cells[idx["姓名"]] = "张三"

	_, err := parseTestRow(idx, cells, 1)
	assert.Error(t, err, "missing student number")

	cells[idx["学籍号"]] = "G20230101"
	cells[idx["肺活量(ml)"]] = "22o0"
	_, err = parseTestRow(idx, cells, 1)
	assert.Error(t, err)
}
