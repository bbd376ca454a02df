package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/models"
	"github.com/formstamp/formstamp/internal/repository"
	"github.com/formstamp/formstamp/internal/storage"
)

// PdfRenderer produces the overlay PDF for a template and invoice data.
type PdfRenderer interface {
	Render(templateBytes []byte, fields []models.Field, dataValues map[string]any) ([]byte, error)
}

type InvoiceService struct {
	invoices  repository.InvoiceRepository
	templates repository.TemplateRepository
	blobs     storage.BlobStore
	renderer  PdfRenderer
	activity  *RenderLogService
	logger    *logger.Logger
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	templates repository.TemplateRepository,
	blobs storage.BlobStore,
	renderer PdfRenderer,
	activity *RenderLogService,
	logger *logger.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		templates: templates,
		blobs:     blobs,
		renderer:  renderer,
		activity:  activity,
		logger:    logger,
	}
}

// CreateInvoice stores a new invoice for one of the requester's templates.
// The data values are kept as supplied; they are matched against the field
// layout at render time, not now.
func (s *InvoiceService) CreateInvoice(ctx context.Context, templateID, requesterEmail string, dataValues map[string]any) (*models.Invoice, error) {
	template, err := s.templates.FindByIDWithFields(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil || template.OwnerEmail != requesterEmail {
		return nil, templateNotFound()
	}

	encoded, err := json.Marshal(dataValues)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("data values are not encodable").
			Mark(ierr.ErrValidation)
	}

	invoice := &models.Invoice{
		ID:         uuid.New().String(),
		TemplateID: template.ID,
		DataValues: string(encoded),
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoicePDF returns the invoice's PDF bytes, serving the previously
// rendered blob when one is still fetchable and rendering otherwise.
func (s *InvoiceService) GetInvoicePDF(ctx context.Context, invoiceID, requesterEmail string) ([]byte, error) {
	start := time.Now()

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoiceNotFound()
	}

	template, err := s.authorize(ctx, invoice, requesterEmail)
	if err != nil {
		return nil, err
	}

	if invoice.PdfBlobKey != "" {
		content, err := s.blobs.Get(ctx, invoice.PdfBlobKey)
		if err == nil {
			s.activity.Record(invoice, template, requesterEmail, models.RenderOutcomeHit, invoice.PdfBlobKey, time.Since(start))
			return content, nil
		}
		// A stale or unreadable key is a cache miss, not a failure. The
		// key is abandoned in memory and a fresh render writes under a
		// new one.
		s.logger.Warnw("cached pdf blob unreadable, regenerating",
			"invoice_id", invoice.ID, "blob_key", invoice.PdfBlobKey, "error", err)
	}

	content, key, err := s.generate(ctx, invoice, template)
	if err != nil {
		s.logger.Errorw("invoice pdf generation failed",
			"invoice_id", invoice.ID, "template_id", template.ID, "error", err)
		s.activity.Record(invoice, template, requesterEmail, models.RenderOutcomeFailed, "", time.Since(start))
		return nil, err
	}

	s.activity.Record(invoice, template, requesterEmail, models.RenderOutcomeGenerated, key, time.Since(start))
	return content, nil
}

// authorize resolves the invoice's owning template and checks that the
// requester owns it. A template owned by someone else reports exactly
// like a missing invoice, so callers cannot probe which invoice ids
// exist.
func (s *InvoiceService) authorize(ctx context.Context, invoice *models.Invoice, requesterEmail string) (*models.Template, error) {
	template, err := s.templates.FindByIDWithFields(ctx, invoice.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil || template.OwnerEmail != requesterEmail {
		return nil, invoiceNotFound()
	}
	return template, nil
}

func (s *InvoiceService) generate(ctx context.Context, invoice *models.Invoice, template *models.Template) ([]byte, string, error) {
	templateBytes, err := s.blobs.Get(ctx, template.SourceBlobKey)
	if err != nil {
		// Unlike a rendered blob, the source template has no fallback.
		return nil, "", ierr.WithError(err).
			WithHint("template source is unavailable").
			Mark(ierr.ErrStorage)
	}

	dataValues, err := invoice.DecodeDataValues()
	if err != nil {
		return nil, "", ierr.WithError(err).
			WithHint("invoice data values are unreadable").
			Mark(ierr.ErrSystem)
	}

	content, err := s.renderer.Render(templateBytes, template.Fields, dataValues)
	if err != nil {
		return nil, "", err
	}

	key := storage.NewInvoiceObjectKey(invoice.ID)
	if err := s.blobs.Put(ctx, key, content, "application/pdf"); err != nil {
		return nil, "", err
	}

	// The caller paid for this render, so the bytes are returned even if
	// recording the new key fails; the next request just regenerates.
	if err := s.invoices.UpdatePdfBlobKey(ctx, invoice.ID, key); err != nil {
		s.logger.Errorw("failed to record new pdf blob key",
			"invoice_id", invoice.ID, "template_id", template.ID, "blob_key", key, "error", err)
	}

	return content, key, nil
}

func invoiceNotFound() error {
	return ierr.NewError("invoice not found").
		WithHint("invoice not found").
		Mark(ierr.ErrNotFound)
}

func templateNotFound() error {
	return ierr.NewError("template not found").
		WithHint("template not found").
		Mark(ierr.ErrNotFound)
}
