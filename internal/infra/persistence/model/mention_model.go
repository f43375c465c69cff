package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IncomingMentionModel mirrors the 'incoming_webmentions' table.
// (source, target) carries a unique index so resubmissions upsert.
type IncomingMentionModel struct {
	UUID           uuid.UUID      `gorm:"type:uuid;primary_key"`
	Source         string         `gorm:"type:text;not null;uniqueIndex:idx_incoming_source_target"`
	Target         string         `gorm:"type:text;not null;uniqueIndex:idx_incoming_source_target"`
	Vouch          *string        `gorm:"type:text"`
	Status         string         `gorm:"type:varchar(32);not null"`
	Message        string         `gorm:"type:text;not null;default:''"`
	Snapshot       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null"`
	LastModifiedAt time.Time      `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (IncomingMentionModel) TableName() string {
	return "incoming_webmentions"
}

// OutgoingMentionModel mirrors the 'outgoing_webmentions' table, with the
// same shape and uniqueness as the incoming side.
type OutgoingMentionModel struct {
	UUID           uuid.UUID      `gorm:"type:uuid;primary_key"`
	Source         string         `gorm:"type:text;not null;uniqueIndex:idx_outgoing_source_target"`
	Target         string         `gorm:"type:text;not null;uniqueIndex:idx_outgoing_source_target"`
	Vouch          *string        `gorm:"type:text"`
	Status         string         `gorm:"type:varchar(32);not null"`
	Message        string         `gorm:"type:text;not null;default:''"`
	Snapshot       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null"`
	LastModifiedAt time.Time      `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (OutgoingMentionModel) TableName() string {
	return "outgoing_webmentions"
}
