package models

import (
	"time"

	"gorm.io/gorm"
)

// Render outcomes recorded in the activity log.
const (
	RenderOutcomeHit       = "cache_hit"
	RenderOutcomeGenerated = "generated"
	RenderOutcomeFailed    = "failed"
)

// RenderLog records one PDF retrieval request: whether it was served from
// the blob cache or freshly generated, and how long it took.
type RenderLog struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	InvoiceID      string         `gorm:"type:varchar(36);not null;index" json:"invoice_id"`
	TemplateID     string         `gorm:"type:varchar(36);not null;index" json:"template_id"`
	RequesterEmail string         `gorm:"type:varchar(191)" json:"requester_email"`
	Outcome        string         `gorm:"type:varchar(20);not null;index" json:"outcome"`
	BlobKey        string         `json:"blob_key"`
	DurationMs     int64          `gorm:"not null" json:"duration_ms"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RenderLog) TableName() string {
	return "render_logs"
}
