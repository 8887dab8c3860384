package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Catalog of measures, seeded from the grading package's embedded
// data. measure_type_applicable_years holds the canonical year labels
// the measure applies to within its school type (empty = all).
type MeasureTypeModel struct {
	MeasureTypeID         uuid.UUID `gorm:"column:measure_type_id;type:uuid;default:gen_random_uuid();primaryKey" json:"measure_type_id"`
	MeasureTypeName       string    `gorm:"column:measure_type_name;type:varchar(40);not null;uniqueIndex" json:"measure_type_name"`
	MeasureTypeUnit       string    `gorm:"column:measure_type_unit;type:varchar(16);not null" json:"measure_type_unit"`
	MeasureTypeIsExercise bool      `gorm:"column:measure_type_is_exercise;not null;default:false" json:"measure_type_is_exercise"`

	MeasureTypeIsReported       bool           `gorm:"column:measure_type_is_reported;not null;default:true" json:"measure_type_is_reported"`
	MeasureTypeGender           string         `gorm:"column:measure_type_gender;type:varchar(8);not null;default:全部" json:"measure_type_gender"`
	MeasureTypeSchoolType       string         `gorm:"column:measure_type_school_type;type:varchar(8)" json:"measure_type_school_type"`
	MeasureTypeApplicableYears  pq.StringArray `gorm:"column:measure_type_applicable_years;type:text[]" json:"measure_type_applicable_years"`
	MeasureTypeCompareDirection string         `gorm:"column:measure_type_compare_direction;type:varchar(8);not null;default:any" json:"measure_type_compare_direction"`
}

func (MeasureTypeModel) TableName() string { return "measure_types" }
