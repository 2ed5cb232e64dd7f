package certificate

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"techlearn/models/course"

	"github.com/jung-kurt/gofpdf"
)

var whitespace = regexp.MustCompile(`\s+`)

// Exporter turns certificates into downloadable PDF documents.
type Exporter struct {
	renderer *Renderer
}

func NewExporter(renderer *Renderer) *Exporter {
	return &Exporter{renderer: renderer}
}

// ExportPDF renders the certificate and centers it on a landscape A4 page, scaled to fit.
func (e *Exporter) ExportPDF(ctx context.Context, info course.CertificateInfo, tpl Template) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := e.renderer.RenderPNG(info, tpl)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(info.CourseTitle+" Certificate", true)
	pdf.SetAuthor("TechLearn LMS", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", opts, bytes.NewReader(img))

	pageW, pageH := pdf.GetPageSize()
	ratio := float64(canvasWidth) / float64(canvasHeight)
	imgW := pageW
	imgH := imgW / ratio
	if imgH > pageH {
		imgH = pageH
		imgW = imgH * ratio
	}
	pdf.ImageOptions("certificate", (pageW-imgW)/2, (pageH-imgH)/2, imgW, imgH, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download name of a certificate for courseTitle.
func FileName(courseTitle string) string {
	return fmt.Sprintf("TechLearn_%s_Certificate.pdf", whitespace.ReplaceAllString(courseTitle, "-"))
}
