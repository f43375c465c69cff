// Package model holds the GORM table mappings for the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EntryModel mirrors the 'entries' table. Content is the microformats2 JSON
// document stored verbatim; location uniqueness among live rows is enforced
// by a partial index in the migrations.
type EntryModel struct {
	UUID           uuid.UUID      `gorm:"type:uuid;primary_key"`
	Author         string         `gorm:"type:text;not null;index"`
	Location       *string        `gorm:"type:text"`
	Content        datatypes.JSON `gorm:"type:jsonb;not null"`
	Deleted        bool           `gorm:"not null;default:false"`
	CreatedAt      time.Time      `gorm:"not null"`
	LastModifiedAt time.Time      `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (EntryModel) TableName() string {
	return "entries"
}
