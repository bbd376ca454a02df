package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/services"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService *services.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

type CreateInvoiceRequest struct {
	TemplateID string         `json:"template_id" binding:"required"`
	Data       map[string]any `json:"data"`
}

type CreateInvoiceResponse struct {
	InvoiceID string `json:"invoice_id"`
	Message   string `json:"message"`
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("invalid invoice payload").
			Mark(ierr.ErrValidation))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req.TemplateID, email, req.Data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, CreateInvoiceResponse{
		InvoiceID: invoice.ID,
		Message:   "Invoice created successfully",
	})
}

// GetInvoicePDF serves the invoice's rendered PDF, generating and
// caching it on first access.
func (h *InvoiceHandler) GetInvoicePDF(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}

	invoiceID := c.Param("invoiceId")
	pdf, err := h.invoiceService.GetInvoicePDF(c.Request.Context(), invoiceID, email)
	if err != nil {
		h.logger.Errorw("failed to serve invoice pdf", "invoice_id", invoiceID, "error", err)
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=invoice_%s.pdf", invoiceID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
