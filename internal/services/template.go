package services

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/models"
	"github.com/formstamp/formstamp/internal/repository"
	"github.com/formstamp/formstamp/internal/storage"
)

const defaultColorHex = "#000000"

// FieldDefinition is the configuration-time description of one field.
// Validation happens here, once: render time trusts stored fields and
// falls back silently instead of failing.
type FieldDefinition struct {
	Name      string  `json:"name" validate:"required"`
	XPosition float64 `json:"x_position" validate:"gte=0"`
	YPosition float64 `json:"y_position" validate:"gte=0"`
	Width     float64 `json:"width" validate:"gte=0"`
	Height    float64 `json:"height" validate:"gte=0"`
	FontSize  float64 `json:"font_size" validate:"gte=8,lte=72"`
	Type      string  `json:"type" validate:"required,oneof=text number date"`
	ColorHex  string  `json:"color_hex" validate:"omitempty,hexcolor,len=7"`
}

type TemplateService struct {
	templates repository.TemplateRepository
	blobs     storage.BlobStore
	validate  *validator.Validate
	logger    *logger.Logger
}

func NewTemplateService(templates repository.TemplateRepository, blobs storage.BlobStore, logger *logger.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		blobs:     blobs,
		validate:  validator.New(),
		logger:    logger,
	}
}

// UploadTemplate stores the template PDF in blob storage and persists
// its metadata. A failed metadata write rolls the blob back best-effort.
func (s *TemplateService) UploadTemplate(ctx context.Context, name, ownerEmail string, file multipart.File, header *multipart.FileHeader) (*models.Template, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to read uploaded file").
			Mark(ierr.ErrValidation)
	}

	templateID := uuid.New().String()
	objectKey := storage.NewTemplateObjectKey(templateID, header.Filename)

	if err := s.blobs.Put(ctx, objectKey, content, "application/pdf"); err != nil {
		return nil, err
	}

	template := &models.Template{
		ID:            templateID,
		Name:          name,
		SourceBlobKey: objectKey,
		OwnerEmail:    ownerEmail,
		FileSize:      int64(len(content)),
	}

	if err := s.templates.Create(ctx, template); err != nil {
		if delErr := s.blobs.Delete(ctx, objectKey); delErr != nil {
			s.logger.Warnw("failed to clean up template blob after create failure",
				"blob_key", objectKey, "error", delErr)
		}
		return nil, err
	}

	return template, nil
}

// GetTemplate returns the requester's template with its field layout.
// Someone else's template reports as not found.
func (s *TemplateService) GetTemplate(ctx context.Context, templateID, requesterEmail string) (*models.Template, error) {
	template, err := s.templates.FindByIDWithFields(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil || template.OwnerEmail != requesterEmail {
		return nil, templateNotFound()
	}
	return template, nil
}

// ConfigureFields validates and replaces the template's field layout.
func (s *TemplateService) ConfigureFields(ctx context.Context, templateID, requesterEmail string, definitions []FieldDefinition) ([]models.Field, error) {
	template, err := s.GetTemplate(ctx, templateID, requesterEmail)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(definitions))
	fields := make([]models.Field, 0, len(definitions))
	for _, def := range definitions {
		if err := s.validate.Struct(def); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("invalid field definition %q", def.Name).
				Mark(ierr.ErrValidation)
		}
		if seen[def.Name] {
			return nil, ierr.NewErrorf("duplicate field name %q", def.Name).
				WithHintf("field names must be unique within a template, got %q twice", def.Name).
				Mark(ierr.ErrValidation)
		}
		seen[def.Name] = true

		colorHex := def.ColorHex
		if colorHex == "" {
			colorHex = defaultColorHex
		}

		fields = append(fields, models.Field{
			ID:         uuid.New().String(),
			TemplateID: template.ID,
			Name:       def.Name,
			XPosition:  def.XPosition,
			YPosition:  def.YPosition,
			Width:      def.Width,
			Height:     def.Height,
			FontSize:   def.FontSize,
			Type:       def.Type,
			ColorHex:   colorHex,
		})
	}

	if err := s.templates.ReplaceFields(ctx, template.ID, fields); err != nil {
		return nil, err
	}

	return fields, nil
}
