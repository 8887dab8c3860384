package model

import (
	"github.com/google/uuid"
)

// One row per entity. The five capability flags form a strict
// precedence ladder; resolution collapses them into a single tier
// (see features/users/permission/service). Flags are never combined.
type PermissionModel struct {
	PermissionID       uuid.UUID `gorm:"column:permission_id;type:uuid;default:gen_random_uuid();primaryKey" json:"permission_id"`
	PermissionEntityID uuid.UUID `gorm:"column:permission_entity_id;type:uuid;not null;uniqueIndex" json:"permission_entity_id"`

	CanAccessSchoolInClassification                 bool `gorm:"column:can_access_school_in_classification;not null;default:false" json:"can_access_school_in_classification"`
	CanAccessYearInClassification                   bool `gorm:"column:can_access_year_in_classification;not null;default:false" json:"can_access_year_in_classification"`
	CanAccessClassInClassification                  bool `gorm:"column:can_access_class_in_classification;not null;default:false" json:"can_access_class_in_classification"`
	CanAccessSameEntityInternalIDInClassification   bool `gorm:"column:can_access_same_entity_internal_id_in_classification;not null;default:false" json:"can_access_same_entity_internal_id_in_classification"`
	CanAccessChildEntityInternalIDInClassification  bool `gorm:"column:can_access_child_entity_internal_id_in_classification;not null;default:false" json:"can_access_child_entity_internal_id_in_classification"`
}

func (PermissionModel) TableName() string { return "permissions" }
