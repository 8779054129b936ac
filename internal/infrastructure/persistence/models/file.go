package models

import (
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/file"
)

// FileModel is the persistence model for an uploaded file record.
type FileModel struct {
	InventoryAggregateModel
	Category    string     `gorm:"type:varchar(30);not null;index"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	FileName    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	FileSize    int64      `gorm:"not null"`
	StorageKey  string     `gorm:"type:varchar(500);not null;uniqueIndex"`
	IsUsed      bool       `gorm:"not null;default:false"`
	UsedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FileModel) TableName() string {
	return "files"
}

// ToDomain converts the persistence model to a domain File
func (m *FileModel) ToDomain() *file.File {
	return &file.File{
		InventoryAggregateRoot: m.ownedRoot(),
		Category:               file.Category(m.Category),
		Status:                 file.Status(m.Status),
		FileName:               m.FileName,
		ContentType:            m.ContentType,
		FileSize:               m.FileSize,
		StorageKey:             m.StorageKey,
		Used:                   m.IsUsed,
		UsedBy:                 m.UsedBy,
	}
}

// FromDomain populates the persistence model from a domain File
func (m *FileModel) FromDomain(f *file.File) {
	m.setOwnedRoot(f.InventoryAggregateRoot)
	m.Category = string(f.Category)
	m.Status = string(f.Status)
	m.FileName = f.FileName
	m.ContentType = f.ContentType
	m.FileSize = f.FileSize
	m.StorageKey = f.StorageKey
	m.IsUsed = f.Used
	m.UsedBy = f.UsedBy
}

// FileModelFromDomain creates a new persistence model from a domain File
func FileModelFromDomain(f *file.File) *FileModel {
	m := &FileModel{}
	m.FromDomain(f)
	return m
}
