package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Field types. The type drives form validation upstream, not render
// formatting: every value is drawn with its plain string representation.
const (
	FieldTypeText   = "text"
	FieldTypeNumber = "number"
	FieldTypeDate   = "date"
)

type Template struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	SourceBlobKey string         `gorm:"not null" json:"source_blob_key"`
	OwnerEmail    string         `gorm:"type:varchar(191);not null;index" json:"owner_email"`
	FileSize      int64          `json:"file_size"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Fields   []Field   `gorm:"foreignKey:TemplateID" json:"fields,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:TemplateID" json:"invoices,omitempty"`
}

// Field is a named, positioned slot on the template's first page.
// Positions are stored in top-left-origin pixel space, the coordinate
// system the field editor works in.
type Field struct {
	ID         string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID string  `gorm:"type:varchar(36);not null;index" json:"template_id"`
	Name       string  `gorm:"type:varchar(191);not null" json:"name"`
	XPosition  float64 `gorm:"not null" json:"x_position"`
	YPosition  float64 `gorm:"not null" json:"y_position"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FontSize   float64 `gorm:"not null" json:"font_size"`
	Type       string  `gorm:"type:varchar(20);not null" json:"type"`
	ColorHex   string  `gorm:"type:varchar(7);default:'#000000'" json:"color_hex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Invoice struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID  string         `gorm:"type:varchar(36);not null;index" json:"template_id"`
	DataValues  string         `gorm:"type:json" json:"data_values"` // JSON object keyed by field name
	PdfBlobKey  string         `json:"pdf_blob_key,omitempty"`       // empty until the first successful render
	GeneratedAt time.Time      `json:"generated_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Template Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}

// DecodeDataValues unmarshals the stored JSON data values.
func (i *Invoice) DecodeDataValues() (map[string]any, error) {
	values := make(map[string]any)
	if i.DataValues == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(i.DataValues), &values); err != nil {
		return nil, err
	}
	return values, nil
}
