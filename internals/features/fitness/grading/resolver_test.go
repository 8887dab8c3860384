package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfit_backend/internals/constants"
)

func loadStore(t *testing.T) *Store {
	t.Helper()
	store, err := Load()
	require.NoError(t, err)
	return store
}

func TestLoad(t *testing.T) {
	store := loadStore(t)

	mt, ok := store.MeasureType(constants.MeasureVitalCap)
	require.True(t, ok)
	assert.Equal(t, DirectionHigher, mt.CompareDirection)

	mt, ok = store.MeasureType(constants.MeasureDash50m)
	require.True(t, ok)
	assert.Equal(t, DirectionLower, mt.CompareDirection)

	_, ok = store.MeasureType("跳远")
	assert.False(t, ok)
}

func TestResolveScoreHigherIsBetter(t *testing.T) {
	store := loadStore(t)

	score, err := store.ResolveScore(1700, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score.NormalizedScore)
	assert.Zero(t, score.BonusScore)

	// Exactly on a boundary counts as reaching it.
	score, err = store.ResolveScore(1646, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(95), score.NormalizedScore)

	// Between two brackets the lower one wins.
	score, err = store.ResolveScore(1690, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(95), score.NormalizedScore)

	// Worse than the worst bracket.
	score, err = store.ResolveScore(500, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Zero(t, score.NormalizedScore)

	// No bonus table for this measure.
	score, err = store.ResolveScore(4000, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score.NormalizedScore)
	assert.Zero(t, score.BonusScore)
}

func TestResolveScoreLowerIsBetter(t *testing.T) {
	store := loadStore(t)

	score, err := store.ResolveScore(10.2, constants.MeasureDash50m, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionLower)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score.NormalizedScore)
	assert.Zero(t, score.BonusScore)

	score, err = store.ResolveScore(10.3, constants.MeasureDash50m, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionLower)
	require.NoError(t, err)
	assert.Equal(t, float64(95), score.NormalizedScore)

	score, err = store.ResolveScore(13.2, constants.MeasureDash50m, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionLower)
	require.NoError(t, err)
	assert.Equal(t, float64(10), score.NormalizedScore)

	score, err = store.ResolveScore(14.0, constants.MeasureDash50m, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionLower)
	require.NoError(t, err)
	assert.Zero(t, score.NormalizedScore)
}

func TestResolveScoreBonus(t *testing.T) {
	store := loadStore(t)

	// Top bracket for skipping, boys year 1, is 109.
	score, err := store.ResolveScore(149, constants.MeasureRopeSkipping, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score.NormalizedScore)
	assert.Equal(t, float64(20), score.BonusScore)

	score, err = store.ResolveScore(114, constants.MeasureRopeSkipping, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(2), score.BonusScore)

	// One over the top bracket is under the smallest bonus step.
	score, err = store.ResolveScore(110, constants.MeasureRopeSkipping, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score.NormalizedScore)
	assert.Zero(t, score.BonusScore)

	// Hitting the top bracket exactly is not beyond it.
	score, err = store.ResolveScore(109, constants.MeasureRopeSkipping, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Zero(t, score.BonusScore)

	// Bonus never applies below the top bracket.
	score, err = store.ResolveScore(105, constants.MeasureRopeSkipping, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionHigher)
	require.NoError(t, err)
	assert.Equal(t, float64(95), score.NormalizedScore)
	assert.Zero(t, score.BonusScore)
}

func TestResolveScoreMissingTable(t *testing.T) {
	store := loadStore(t)

	_, err := store.ResolveScore(1700, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "七年级", DirectionHigher)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestResolveScoreRejectsDirectionAny(t *testing.T) {
	store := loadStore(t)

	_, err := store.ResolveScore(50, constants.MeasureVitalCap, constants.GenderMale, constants.SchoolTypePrimary, "一年级", DirectionAny)
	assert.Error(t, err)
}

func TestResolveBMI(t *testing.T) {
	store := loadStore(t)

	result, err := store.ResolveBMI(15.0, constants.GenderMale, constants.SchoolTypePrimary, "一年级")
	require.NoError(t, err)
	assert.Equal(t, float64(100), result.NormalizedScore)
	assert.Equal(t, "正常", result.Grade)

	// Below the normal band there is an open-ended catch-all.
	result, err = store.ResolveBMI(13.4, constants.GenderMale, constants.SchoolTypePrimary, "一年级")
	require.NoError(t, err)
	assert.Equal(t, float64(100), result.NormalizedScore)
	assert.Equal(t, "正常", result.Grade)

	result, err = store.ResolveBMI(19.0, constants.GenderMale, constants.SchoolTypePrimary, "一年级")
	require.NoError(t, err)
	assert.Equal(t, float64(80), result.NormalizedScore)
	assert.Equal(t, "超重", result.Grade)

	result, err = store.ResolveBMI(25.0, constants.GenderMale, constants.SchoolTypePrimary, "一年级")
	require.NoError(t, err)
	assert.Equal(t, float64(60), result.NormalizedScore)
	assert.Equal(t, "肥胖", result.Grade)

	_, err = store.ResolveBMI(15.0, constants.GenderMale, constants.SchoolTypePrimary, "七年级")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestClassify(t *testing.T) {
	store := loadStore(t)

	assert.Equal(t, "优秀", store.Classify(95))
	assert.Equal(t, "优秀", store.Classify(90))
	assert.Equal(t, "良好", store.Classify(89.9))
	assert.Equal(t, "及格", store.Classify(60))
	assert.Equal(t, "不及格", store.Classify(59.9))
	assert.Equal(t, "不及格", store.Classify(-5))
}
