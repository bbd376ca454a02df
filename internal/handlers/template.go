package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
	logger          *logger.Logger
}

func NewTemplateHandler(templateService *services.TemplateService, logger *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

type ConfigureFieldsRequest struct {
	Fields []services.FieldDefinition `json:"fields" binding:"required"`
}

type UploadTemplateResponse struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (h *TemplateHandler) UploadTemplate(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("template")
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("no template file uploaded").
			Mark(ierr.ErrValidation))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.Error(ierr.NewError("unsupported file type").
			WithHint("only .pdf templates are supported").
			Mark(ierr.ErrValidation))
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	template, err := h.templateService.UploadTemplate(c.Request.Context(), name, email, file, header)
	if err != nil {
		h.logger.Errorw("failed to upload template", "owner", email, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, UploadTemplateResponse{
		TemplateID: template.ID,
		Name:       template.Name,
		Message:    "Template uploaded successfully",
	})
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}

	templateID := c.Param("templateId")
	template, err := h.templateService.GetTemplate(c.Request.Context(), templateID, email)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) ConfigureFields(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}

	templateID := c.Param("templateId")

	var req ConfigureFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("invalid field layout payload").
			Mark(ierr.ErrValidation))
		return
	}

	fields, err := h.templateService.ConfigureFields(c.Request.Context(), templateID, email, req.Fields)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": fields})
}
