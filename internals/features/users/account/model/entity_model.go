package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EntityTypeStudent = "student"
	EntityTypeParent  = "parent"
	EntityTypeTeacher = "teacher"
	EntityTypeAdmin   = "admin"
)

// NOTE:
// - entity_internal_id is the school-assigned ID. It is NOT globally
//   unique: a re-enrolled student may reuse it across eras. The pair
//   (internal_id, school) is expected unique while a classification
//   is valid, enforced by the ingestion covering-window check.
// - entity_is_child_of is a self reference ("is child of").
type EntityModel struct {
	EntityID         uuid.UUID  `gorm:"column:entity_id;type:uuid;default:gen_random_uuid();primaryKey" json:"entity_id"`
	EntityName       string     `gorm:"column:entity_name;type:varchar(120);not null" json:"entity_name"`
	EntityInternalID string     `gorm:"column:entity_internal_id;type:varchar(64);not null;index" json:"entity_internal_id"`
	EntityGender     string     `gorm:"column:entity_gender;type:varchar(8);not null" json:"entity_gender"`
	EntityType       string     `gorm:"column:entity_type;type:varchar(16);not null;default:student" json:"entity_type"`
	EntityIsChildOf  *uuid.UUID `gorm:"column:entity_is_child_of;type:uuid" json:"entity_is_child_of,omitempty"`
	EntityBirthDate  *time.Time `gorm:"column:entity_birth_date" json:"entity_birth_date,omitempty"`

	EntityEmail        string `gorm:"column:entity_email;type:varchar(160);not null" json:"entity_email"`
	EntityPasswordHash string `gorm:"column:entity_password_hash;type:text;not null" json:"-"`

	EntityCreatedAt time.Time `gorm:"column:entity_created_at;not null;autoCreateTime" json:"entity_created_at"`
	EntityUpdatedAt time.Time `gorm:"column:entity_updated_at;not null;autoUpdateTime" json:"entity_updated_at"`
}

func (EntityModel) TableName() string { return "entities" }
