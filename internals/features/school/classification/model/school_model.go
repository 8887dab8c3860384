package model

import (
	"time"

	"github.com/google/uuid"
)

type SchoolModel struct {
	SchoolID   uuid.UUID `gorm:"column:school_id;type:uuid;default:gen_random_uuid();primaryKey" json:"school_id"`
	SchoolName string    `gorm:"column:school_name;type:varchar(160);not null;uniqueIndex" json:"school_name"`
	SchoolType string    `gorm:"column:school_type;type:varchar(8);not null" json:"school_type"` // 小学/初中/高中/大学

	SchoolCreatedAt time.Time `gorm:"column:school_created_at;not null;autoCreateTime" json:"school_created_at"`
	SchoolUpdatedAt time.Time `gorm:"column:school_updated_at;not null;autoUpdateTime" json:"school_updated_at"`
}

func (SchoolModel) TableName() string { return "schools" }
