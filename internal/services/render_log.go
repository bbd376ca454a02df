package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/models"
	"github.com/formstamp/formstamp/internal/repository"
)

// RenderLogService records PDF retrieval activity.
type RenderLogService struct {
	logs   repository.RenderLogRepository
	logger *logger.Logger
}

func NewRenderLogService(logs repository.RenderLogRepository, logger *logger.Logger) *RenderLogService {
	return &RenderLogService{
		logs:   logs,
		logger: logger,
	}
}

// Record persists one render outcome. The write happens in the
// background so the request never blocks on, or fails because of,
// activity logging.
func (s *RenderLogService) Record(invoice *models.Invoice, template *models.Template, requesterEmail, outcome, blobKey string, duration time.Duration) {
	entry := &models.RenderLog{
		ID:             uuid.New().String(),
		InvoiceID:      invoice.ID,
		TemplateID:     template.ID,
		RequesterEmail: requesterEmail,
		Outcome:        outcome,
		BlobKey:        blobKey,
		DurationMs:     duration.Milliseconds(),
	}

	go func() {
		if err := s.logs.Create(context.Background(), entry); err != nil {
			s.logger.Warnw("failed to save render log", "invoice_id", entry.InvoiceID, "error", err)
		}
	}()
}

// List returns render logs matching the filter, newest first, plus the
// total count for pagination.
func (s *RenderLogService) List(ctx context.Context, filter repository.RenderLogFilter) ([]models.RenderLog, int64, error) {
	return s.logs.List(ctx, filter)
}
