package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/models"
	"github.com/formstamp/formstamp/internal/repository"
	"github.com/formstamp/formstamp/internal/testutil"
)

const (
	ownerEmail    = "owner@example.com"
	strangerEmail = "stranger@example.com"
)

type stubRenderer struct {
	calls  int
	output []byte
	err    error
}

func (r *stubRenderer) Render(_ []byte, _ []models.Field, _ map[string]any) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.output, nil
}

type invoiceFixture struct {
	service  *InvoiceService
	invoices repository.InvoiceRepository
	logs     repository.RenderLogRepository
	blobs    *testutil.InMemoryBlobStore
	renderer *stubRenderer
	template *models.Template
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	templates := repository.NewTemplateRepository(db)
	invoices := repository.NewInvoiceRepository(db)
	logs := repository.NewRenderLogRepository(db)
	blobs := testutil.NewInMemoryBlobStore()
	renderer := &stubRenderer{output: []byte("%PDF-rendered")}
	log := logger.NewNopLogger()

	template := &models.Template{
		ID:            uuid.New().String(),
		Name:          "Standard Invoice",
		SourceBlobKey: "templates/source.pdf",
		OwnerEmail:    ownerEmail,
		Fields: []models.Field{{
			ID:       uuid.New().String(),
			Name:     "customer_name",
			FontSize: 12,
			Type:     models.FieldTypeText,
			ColorHex: "#000000",
		}},
	}
	require.NoError(t, templates.Create(context.Background(), template))
	blobs.Seed(template.SourceBlobKey, []byte("%PDF-template"))

	activity := NewRenderLogService(logs, log)
	service := NewInvoiceService(invoices, templates, blobs, renderer, activity, log)

	return &invoiceFixture{
		service:  service,
		invoices: invoices,
		logs:     logs,
		blobs:    blobs,
		renderer: renderer,
		template: template,
	}
}

func (f *invoiceFixture) createInvoice(t *testing.T, data map[string]any) *models.Invoice {
	t.Helper()
	invoice, err := f.service.CreateInvoice(context.Background(), f.template.ID, ownerEmail, data)
	require.NoError(t, err)
	return invoice
}

func TestCreateInvoice(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice := f.createInvoice(t, map[string]any{"customer_name": "Acme Co", "total": 42})

	stored, err := f.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, f.template.ID, stored.TemplateID)
	assert.Empty(t, stored.PdfBlobKey)

	values, err := stored.DecodeDataValues()
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", values["customer_name"])
}

func TestCreateInvoiceForeignTemplate(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.service.CreateInvoice(context.Background(), f.template.ID, strangerEmail, nil)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	_, missingErr := f.service.CreateInvoice(context.Background(), uuid.New().String(), strangerEmail, nil)
	require.Error(t, missingErr)
	assert.Equal(t, err.Error(), missingErr.Error())
}

func TestGetInvoicePDFGeneratesAndRecordsKey(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, map[string]any{"customer_name": "Acme Co"})

	pdf, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-rendered"), pdf)
	assert.Equal(t, 1, f.renderer.calls)

	stored, err := f.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PdfBlobKey)

	blob, err := f.blobs.Get(context.Background(), stored.PdfBlobKey)
	require.NoError(t, err)
	assert.Equal(t, pdf, blob)
}

func TestGetInvoicePDFServesCachedBlob(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, map[string]any{"customer_name": "Acme Co"})

	_, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.NoError(t, err)
	require.Equal(t, 1, f.renderer.calls)

	pdf, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-rendered"), pdf)
	assert.Equal(t, 1, f.renderer.calls, "cache hit must not render again")
}

func TestGetInvoicePDFStaleBlobRegenerates(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, map[string]any{"customer_name": "Acme Co"})

	_, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.NoError(t, err)

	stored, err := f.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	staleKey := stored.PdfBlobKey
	f.blobs.FailGetKeys[staleKey] = true

	pdf, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-rendered"), pdf)
	assert.Equal(t, 2, f.renderer.calls)

	stored, err = f.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, staleKey, stored.PdfBlobKey, "a regenerated pdf gets a fresh blob key")
}

func TestGetInvoicePDFOwnershipIndistinguishableFromMissing(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, nil)

	_, foreignErr := f.service.GetInvoicePDF(context.Background(), invoice.ID, strangerEmail)
	require.Error(t, foreignErr)
	assert.True(t, ierr.IsNotFound(foreignErr))

	_, missingErr := f.service.GetInvoicePDF(context.Background(), uuid.New().String(), strangerEmail)
	require.Error(t, missingErr)
	assert.True(t, ierr.IsNotFound(missingErr))

	// an existing invoice owned by someone else must be indistinguishable
	// from one that does not exist
	assert.Equal(t, missingErr.Error(), foreignErr.Error())
	assert.Equal(t, ierr.HTTPStatusFromErr(missingErr), ierr.HTTPStatusFromErr(foreignErr))
	assert.Zero(t, f.renderer.calls)
}

func TestGetInvoicePDFBlobPutFailureIsFatal(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, nil)

	f.blobs.PutErr = ierr.NewError("bucket unavailable").Mark(ierr.ErrStorage)

	_, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.Error(t, err)

	stored, findErr := f.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, findErr)
	assert.Empty(t, stored.PdfBlobKey, "a failed store must not record a blob key")
}

func TestGetInvoicePDFRenderFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, nil)

	f.renderer.err = ierr.NewError("bad template").Mark(ierr.ErrGeneration)

	_, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.Error(t, err)
	assert.True(t, ierr.HTTPStatusFromErr(err) >= 500)
	assert.Len(t, f.blobs.Keys(), 1, "only the seeded template blob may exist")
}

func TestGetInvoicePDFMissingSourceBlob(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, nil)

	require.NoError(t, f.blobs.Delete(context.Background(), f.template.SourceBlobKey))

	_, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.Error(t, err)
	assert.False(t, ierr.IsNotFound(err), "a lost source is a server fault, not a 404")
}

func TestGetInvoicePDFRecordsActivity(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, map[string]any{"customer_name": "Acme Co"})

	_, err := f.service.GetInvoicePDF(context.Background(), invoice.ID, ownerEmail)
	require.NoError(t, err)

	// the log write is asynchronous
	assert.Eventually(t, func() bool {
		logs, total, err := f.logs.List(context.Background(), repository.RenderLogFilter{InvoiceID: invoice.ID})
		if err != nil || total != 1 {
			return false
		}
		return logs[0].Outcome == models.RenderOutcomeGenerated && logs[0].RequesterEmail == ownerEmail
	}, 2*time.Second, 10*time.Millisecond)
}
