package repository

import (
	"context"
	"time"

	"github.com/formstamp/formstamp/internal/models"
)

// TemplateRepository is the read side of template persistence that the
// rendering core consumes. Lookups return nil without error when no row
// matches, so callers decide how absence is reported.
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	// FindByIDWithFields returns the template together with its owner
	// email and field layout, or nil if it does not exist.
	FindByIDWithFields(ctx context.Context, id string) (*models.Template, error)
	// ReplaceFields swaps the template's field layout atomically.
	ReplaceFields(ctx context.Context, templateID string, fields []models.Field) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	// UpdatePdfBlobKey records the blob key of a freshly rendered PDF.
	UpdatePdfBlobKey(ctx context.Context, id string, key string) error
}

type RenderLogRepository interface {
	Create(ctx context.Context, log *models.RenderLog) error
	List(ctx context.Context, filter RenderLogFilter) ([]models.RenderLog, int64, error)
	// DeleteOlderThan purges log rows created before cutoff and returns
	// the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RenderLogFilter narrows and paginates render log listings.
type RenderLogFilter struct {
	InvoiceID string
	Outcome   string
	Limit     int
	Offset    int
}
