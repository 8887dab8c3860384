package model

import (
	"time"

	"github.com/google/uuid"
)

// The core persists only the blob-store path handle, never raw bytes.
type FileStorageModel struct {
	FileStorageID   uuid.UUID `gorm:"column:file_storage_id;type:uuid;default:gen_random_uuid();primaryKey" json:"file_storage_id"`
	FileStoragePath string    `gorm:"column:file_storage_path;type:text;not null" json:"file_storage_path"`

	FileStorageCreatedAt time.Time `gorm:"column:file_storage_created_at;not null;autoCreateTime" json:"file_storage_created_at"`
}

func (FileStorageModel) TableName() string { return "file_storages" }
