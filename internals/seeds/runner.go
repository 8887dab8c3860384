package seeds

import (
	"log"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfit_backend/internals/features/fitness/grading"
	classModel "schoolfit_backend/internals/features/school/classification/model"
	fileModel "schoolfit_backend/internals/features/school/files/model"
	recordModel "schoolfit_backend/internals/features/school/records/model"
	accountModel "schoolfit_backend/internals/features/users/account/model"
)

// Run migrates the schema and reconciles reference data. It is safe
// to run on every startup.
func Run(db *gorm.DB, tables *grading.Store) error {
	if err := db.AutoMigrate(
		&accountModel.EntityModel{},
		&accountModel.PermissionModel{},
		&classModel.SchoolModel{},
		&classModel.ClassificationModel{},
		&classModel.ClassificationMapModel{},
		&recordModel.MeasureTypeModel{},
		&recordModel.FitnessTestModel{},
		&recordModel.RecordModel{},
		&fileModel.FileStorageModel{},
		&fileModel.FileProcessModel{},
		&fileModel.FileProcessMessageModel{},
	); err != nil {
		return err
	}
	return seedMeasureTypes(db, tables)
}

// seedMeasureTypes upserts the measure catalog from the embedded
// grading data, so the DB rows never drift from the tables the
// resolver actually grades against.
func seedMeasureTypes(db *gorm.DB, tables *grading.Store) error {
	rows := make([]recordModel.MeasureTypeModel, 0)
	for _, m := range tables.MeasureTypes() {
		rows = append(rows, measureTypeRow(m))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MeasureTypeName < rows[j].MeasureTypeName })
	if len(rows) == 0 {
		return nil
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "measure_type_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"measure_type_unit",
			"measure_type_is_exercise",
			"measure_type_is_reported",
			"measure_type_gender",
			"measure_type_school_type",
			"measure_type_applicable_years",
			"measure_type_compare_direction",
		}),
	}).Create(&rows).Error
	if err != nil {
		return err
	}
	log.Printf("[SEED] measure types reconciled: %d", len(rows))
	return nil
}

func measureTypeRow(m grading.MeasureType) recordModel.MeasureTypeModel {
	row := recordModel.MeasureTypeModel{
		MeasureTypeName:             m.Name,
		MeasureTypeUnit:             m.Unit,
		MeasureTypeIsExercise:       m.IsExercise,
		MeasureTypeIsReported:       m.IsReported,
		MeasureTypeGender:           m.Gender,
		MeasureTypeCompareDirection: string(m.CompareDirection),
	}
	// A measure pinned to a single school type carries that type and
	// its year list; anything broader stays blank (= applies to all).
	if len(m.ApplicableTo) == 1 {
		for schoolType, years := range m.ApplicableTo {
			row.MeasureTypeSchoolType = schoolType
			row.MeasureTypeApplicableYears = append(row.MeasureTypeApplicableYears, years...)
		}
		sort.Strings(row.MeasureTypeApplicableYears)
	}
	return row
}
