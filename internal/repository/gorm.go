package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/models"
)

type gormTemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &gormTemplateRepository{db: db}
}

func (r *gormTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return ierr.WithError(err).
			WithHint("failed to save template").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *gormTemplateRepository) FindByIDWithFields(ctx context.Context, id string) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).
		Preload("Fields").
		First(&template, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("failed to load template").
			Mark(ierr.ErrDatabase)
	}
	return &template, nil
}

func (r *gormTemplateRepository) ReplaceFields(ctx context.Context, templateID string, fields []models.Field) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&models.Field{}).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Create(&fields).Error
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update field layout").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

type gormInvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &gormInvoiceRepository{db: db}
}

func (r *gormInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return ierr.WithError(err).
			WithHint("failed to save invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *gormInvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("failed to load invoice").
			Mark(ierr.ErrDatabase)
	}
	return &invoice, nil
}

func (r *gormInvoiceRepository) UpdatePdfBlobKey(ctx context.Context, id string, key string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"pdf_blob_key": key,
			"generated_at": time.Now(),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("failed to record pdf blob key").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewErrorf("invoice %s vanished before key update", id).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

type gormRenderLogRepository struct {
	db *gorm.DB
}

func NewRenderLogRepository(db *gorm.DB) RenderLogRepository {
	return &gormRenderLogRepository{db: db}
}

func (r *gormRenderLogRepository) Create(ctx context.Context, log *models.RenderLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return ierr.WithError(err).
			WithHint("failed to save render log").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *gormRenderLogRepository) List(ctx context.Context, filter RenderLogFilter) ([]models.RenderLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RenderLog{})
	if filter.InvoiceID != "" {
		query = query.Where("invoice_id = ?", filter.InvoiceID)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, ierr.WithError(err).
			WithHint("failed to count render logs").
			Mark(ierr.ErrDatabase)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var logs []models.RenderLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, ierr.WithError(err).
			WithHint("failed to fetch render logs").
			Mark(ierr.ErrDatabase)
	}

	return logs, total, nil
}

func (r *gormRenderLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.RenderLog{})
	if result.Error != nil {
		return 0, ierr.WithError(result.Error).
			WithHint("failed to purge render logs").
			Mark(ierr.ErrDatabase)
	}
	return result.RowsAffected, nil
}
