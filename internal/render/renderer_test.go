package render

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/pagetree"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/models"
)

// makeTemplate builds a minimal one-page letter-size template PDF.
func makeTemplate(t *testing.T) []byte {
	return makeTemplateSized(t, document.Letter)
}

func makeTemplateSized(t *testing.T, paper *pdf.Rectangle) []byte {
	t.Helper()

	var buf bytes.Buffer
	page, err := document.WriteSinglePage(&buf, paper, pdf.V1_7, nil)
	require.NoError(t, err)

	heading := standard.TimesRoman.New()
	page.TextBegin()
	page.TextSetFont(heading, 24)
	page.TextFirstLine(72, 700)
	page.TextShow("INVOICE")
	page.TextEnd()

	require.NoError(t, page.Close())
	return buf.Bytes()
}

// firstPageContent returns the decoded content stream of page one.
func firstPageContent(t *testing.T, data []byte) string {
	t.Helper()

	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	require.NoError(t, err)
	_, pageDict, err := pagetree.GetPage(r, 0)
	require.NoError(t, err)
	var content bytes.Buffer
	require.NoError(t, copyPageContent(&content, r, pageDict))
	return content.String()
}

func TestRenderDrawsValueAtConvertedPosition(t *testing.T) {
	renderer := NewRenderer()
	fields := []models.Field{{
		Name:      "customer_name",
		XPosition: 10,
		YPosition: 20,
		FontSize:  12,
		Type:      models.FieldTypeText,
		ColorHex:  "#000000",
	}}

	out, err := renderer.Render(makeTemplate(t), fields, map[string]any{"customer_name": "Acme Co"})
	require.NoError(t, err)

	content := firstPageContent(t, out)
	// TextShow may emit a kerned TJ operator; strip the inter-glyph
	// kern numbers so the literal text is contiguous again.
	unkerned := regexp.MustCompile(`\)-?\d+\(`).ReplaceAllString(content, "")
	assert.Contains(t, unkerned, "Acme Co")
	// letter page: 792 - 20 - 12
	assert.Contains(t, content, "10 760")
}

func TestRenderOffsetPageBox(t *testing.T) {
	renderer := NewRenderer()
	// a page box that does not start at the origin: the flip hinges on
	// the box's top edge, not its height
	paper := &pdf.Rectangle{LLx: 0, LLy: 100, URx: 612, URy: 892}
	fields := []models.Field{{
		Name:      "customer_name",
		XPosition: 10,
		YPosition: 20,
		FontSize:  12,
		Type:      models.FieldTypeText,
		ColorHex:  "#000000",
	}}

	out, err := renderer.Render(makeTemplateSized(t, paper), fields, map[string]any{"customer_name": "Acme Co"})
	require.NoError(t, err)

	content := firstPageContent(t, out)
	// 892 - 20 - 12, not 792 - 20 - 12
	assert.Contains(t, content, "10 860")
	assert.NotContains(t, content, "10 760")
}

func TestRenderAppliesFieldColor(t *testing.T) {
	renderer := NewRenderer()
	fields := []models.Field{{
		Name:      "total",
		XPosition: 100,
		YPosition: 200,
		FontSize:  14,
		Type:      models.FieldTypeNumber,
		ColorHex:  "#FF0000",
	}}

	out, err := renderer.Render(makeTemplate(t), fields, map[string]any{"total": "199.50"})
	require.NoError(t, err)

	content := firstPageContent(t, out)
	assert.Contains(t, content, "199.50")
	assert.Contains(t, content, "1 0 0 rg")
}

func TestRenderSkipsFieldsWithoutValues(t *testing.T) {
	renderer := NewRenderer()
	fields := []models.Field{{
		Name:      "missing_field",
		XPosition: 10,
		YPosition: 20,
		FontSize:  12,
		Type:      models.FieldTypeText,
		ColorHex:  "#000000",
	}}

	out, err := renderer.Render(makeTemplate(t), fields, map[string]any{})
	require.NoError(t, err)

	content := firstPageContent(t, out)
	assert.NotContains(t, content, "missing_field")
}

func TestRenderRejectsInvalidTemplate(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render([]byte("this is not a pdf"), nil, nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ierr.ErrGeneration))
}

func TestRenderWithoutFieldsKeepsTemplatePage(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render(makeTemplate(t), nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// output must still be a readable one-page document
	r, err := pdf.NewReader(bytes.NewReader(out), nil)
	require.NoError(t, err)
	_, _, err = pagetree.GetPage(r, 0)
	require.NoError(t, err)
}
