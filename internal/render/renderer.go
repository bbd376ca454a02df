package render

import (
	"bytes"
	"fmt"
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
	"seehuhn.de/go/pdf/graphics/form"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/pdfcopy"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/models"
)

// Renderer overlays invoice data values onto a template PDF. The first
// page of the template is imported as a form XObject into a fresh
// single-page document, then each resolved field value is drawn on top
// of it. Rendering never partially succeeds: any parse or draw failure
// returns an error and no bytes.
type Renderer struct {
	font font.Layouter
}

func NewRenderer() *Renderer {
	return &Renderer{font: standard.Helvetica.New()}
}

func (r *Renderer) Render(templateBytes []byte, fields []models.Field, dataValues map[string]any) ([]byte, error) {
	src, err := pdf.NewReader(bytes.NewReader(templateBytes), nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("template is not a valid PDF").
			Mark(ierr.ErrGeneration)
	}

	_, pageDict, err := pagetree.GetPage(src, 0)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("template has no first page").
			Mark(ierr.ErrGeneration)
	}

	box := pageDict["CropBox"]
	if box == nil {
		box = pageDict["MediaBox"]
	}
	bbox, err := pdf.GetRectangle(src, box)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("template page has no usable page box").
			Mark(ierr.ErrGeneration)
	}

	var buf bytes.Buffer
	page, err := document.WriteSinglePage(&buf, bbox, pdf.V1_7, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to start output document").
			Mark(ierr.ErrGeneration)
	}

	// The template page becomes the page background. Its resources are
	// copied over so the imported content stream keeps resolving.
	background := &form.Form{
		Draw: func(w *graphics.Writer) error {
			copier := pdfcopy.NewCopier(page.Out, src)

			origResources, err := pdf.GetDict(src, pageDict["Resources"])
			if err != nil {
				return err
			}
			resourceDict, err := copier.CopyDict(origResources)
			if err != nil {
				return err
			}
			resources := &pdf.Resources{}
			if err := pdf.DecodeDict(nil, resources, resourceDict); err != nil {
				return err
			}
			w.Resources = resources

			return copyPageContent(w.Content, src, pageDict)
		},
		BBox: *bbox,
	}
	page.DrawXObject(background)

	// Stored positions are top-left offsets within the page box, so the
	// flip hinges on the box's top edge, not its height.
	pageHeight := bbox.URy
	for _, inst := range ResolveValues(fields, dataValues) {
		rgb := ResolveColor(inst.Field.ColorHex)
		page.SetFillColor(color.DeviceRGB(rgb.R, rgb.G, rgb.B))
		page.TextBegin()
		page.TextSetFont(r.font, inst.Field.FontSize)
		page.TextFirstLine(inst.Field.XPosition, ToPdfY(pageHeight, inst.Field.YPosition, inst.Field.FontSize))
		page.TextShow(inst.Text)
		page.TextEnd()
	}

	if err := page.Close(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to render document").
			Mark(ierr.ErrGeneration)
	}

	return buf.Bytes(), nil
}

// copyPageContent writes the page's decoded content to dst. The Contents
// entry holds either a single stream or an array of stream parts.
func copyPageContent(dst io.Writer, src pdf.Getter, pageDict pdf.Dict) error {
	contents, err := pdf.Resolve(src, pageDict["Contents"])
	if err != nil {
		return err
	}

	var parts pdf.Array
	switch contents := contents.(type) {
	case *pdf.Stream:
		parts = pdf.Array{contents}
	case pdf.Array:
		parts = contents
	default:
		return fmt.Errorf("unexpected type %T for page contents", contents)
	}

	for i, part := range parts {
		obj, err := pdf.Resolve(src, part)
		if err != nil {
			return err
		}
		stm, ok := obj.(*pdf.Stream)
		if !ok {
			return fmt.Errorf("unexpected type %T for page contents part", obj)
		}
		decoded, err := pdf.DecodeStream(src, stm, 0)
		if err != nil {
			return err
		}
		if i > 0 {
			// parts concatenate with whitespace between them
			if _, err := io.WriteString(dst, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.Copy(dst, decoded); err != nil {
			return err
		}
	}
	return nil
}
