package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"techlearn/models/course"

	"github.com/fogleman/gg"
)

type Template string

const (
	TemplateModern  Template = "modern"
	TemplateClassic Template = "classic"
)

var ErrUnknownTemplate = errors.New("unknown certificate template")

// ParseTemplate maps a template name to a Template. An empty name selects modern.
func ParseTemplate(name string) (Template, error) {
	switch Template(strings.ToLower(strings.TrimSpace(name))) {
	case "", TemplateModern:
		return TemplateModern, nil
	case TemplateClassic:
		return TemplateClassic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}

type theme struct {
	background color.Color
	header     color.Color
	body       color.Color
	name       color.Color
	course     color.Color
	rule       color.Color
	accent     color.Color
	titleFont  string
	bodyFont   string
	nameFont   string
}

var themes = map[Template]theme{
	TemplateModern: {
		background: color.White,
		header:     color.RGBA{0x1e, 0x40, 0xaf, 0xff},
		body:       color.RGBA{0x4b, 0x55, 0x63, 0xff},
		name:       color.RGBA{0x1e, 0x40, 0xaf, 0xff},
		course:     color.RGBA{0x37, 0x41, 0x51, 0xff},
		rule:       color.RGBA{0xd1, 0xd5, 0xdb, 0xff},
		accent:     color.RGBA{0x1d, 0x4e, 0xd8, 0xff},
		titleFont:  FontBold,
		bodyFont:   FontRegular,
		nameFont:   FontBold,
	},
	TemplateClassic: {
		background: color.RGBA{0xfc, 0xf8, 0xf2, 0xff},
		header:     color.RGBA{0x1f, 0x29, 0x37, 0xff},
		body:       color.RGBA{0x37, 0x41, 0x51, 0xff},
		name:       color.RGBA{0x11, 0x18, 0x27, 0xff},
		course:     color.RGBA{0x1f, 0x29, 0x37, 0xff},
		rule:       color.RGBA{0x6b, 0x72, 0x80, 0xff},
		accent:     color.RGBA{0xc7, 0xa7, 0x68, 0xff},
		titleFont:  FontBoldItalic,
		bodyFont:   FontItalic,
		nameFont:   FontBoldItalic,
	},
}

// Canvas size in pixels, at the aspect ratio of a landscape A4 page.
const (
	canvasWidth  = 1684
	canvasHeight = 1190
)

// Renderer draws certificates as PNG images.
type Renderer struct {
	fonts *FontRegistry
}

func NewRenderer(fonts *FontRegistry) *Renderer {
	if fonts == nil {
		fonts = NewFontRegistry(nil)
	}
	return &Renderer{fonts: fonts}
}

func (r *Renderer) RenderPNG(info course.CertificateInfo, tpl Template) ([]byte, error) {
	th, ok := themes[tpl]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, tpl)
	}

	const w, h = float64(canvasWidth), float64(canvasHeight)
	dc := gg.NewContext(canvasWidth, canvasHeight)

	dc.SetColor(th.background)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	switch tpl {
	case TemplateModern:
		dc.SetColor(th.accent)
		dc.DrawRectangle(0, 0, w, 24)
		dc.Fill()
	case TemplateClassic:
		dc.SetColor(color.RGBA{0x4a, 0x4a, 0x4a, 0xff})
		dc.SetLineWidth(6)
		dc.DrawRectangle(12, 12, w-24, h-24)
		dc.Stroke()
		dc.DrawRectangle(28, 28, w-56, h-56)
		dc.Stroke()
		dc.SetColor(th.accent)
		dc.SetLineWidth(2)
		dc.DrawRectangle(48, 48, w-96, h-96)
		dc.Stroke()
	}

	text := func(fontName string, size float64, c color.Color, s string, x, y, ax float64) error {
		face, err := r.fonts.Face(fontName, size)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(c)
		dc.DrawStringAnchored(s, x, y, ax, 0.5)
		return nil
	}
	wrapped := func(fontName string, size float64, c color.Color, s string, y float64) error {
		face, err := r.fonts.Face(fontName, size)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(c)
		dc.DrawStringWrapped(s, w/2, y, 0.5, 0.5, w-320, 1.2, gg.AlignCenter)
		return nil
	}

	steps := []func() error{
		func() error { return text(th.titleFont, 40, th.header, "TechLearn LMS", 110, 120, 0) },
		func() error { return text(th.bodyFont, 26, th.body, "Free Tech Education", 110, 165, 0) },
		func() error { return text(th.bodyFont, 26, th.body, info.CourseCategory, w-110, 120, 1) },
		func() error {
			return text(th.titleFont, 44, th.body, "CERTIFICATE OF COMPLETION", w/2, 320, 0.5)
		},
		func() error {
			return text(th.bodyFont, 30, th.body, "This certificate is proudly presented to", w/2, 400, 0.5)
		},
		func() error { return wrapped(th.nameFont, 96, th.name, info.StudentName, 510) },
		func() error {
			return text(th.bodyFont, 30, th.body, "for successfully completing the course", w/2, 620, 0.5)
		},
		func() error { return wrapped(th.titleFont, 64, th.course, info.CourseTitle, 720) },
		func() error { return text(th.titleFont, 28, th.body, "Date of Completion", w/2-360, 960, 0.5) },
		func() error { return text(th.bodyFont, 24, th.body, info.CompletionDate, w/2-360, 1005, 0.5) },
		func() error { return text(th.titleFont, 28, th.body, "Issuing Authority", w/2+360, 960, 0.5) },
		func() error { return text(th.bodyFont, 24, th.body, "TechLearn Prem", w/2+360, 1005, 0.5) },
	}
	if info.Number != "" {
		steps = append(steps, func() error {
			return text(th.bodyFont, 20, th.rule, "Certificate No. "+info.Number, w/2, h-70, 0.5)
		})
	}

	dc.SetColor(th.rule)
	dc.SetLineWidth(3)
	dc.DrawLine(w/2-500, 930, w/2-220, 930)
	dc.DrawLine(w/2+220, 930, w/2+500, 930)
	dc.Stroke()

	if tpl == TemplateModern {
		dc.SetColor(th.accent)
		dc.DrawCircle(w/2, 975, 70)
		dc.Fill()
		dc.SetColor(color.White)
		dc.SetLineWidth(4)
		dc.DrawCircle(w/2, 975, 56)
		dc.Stroke()
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("render certificate: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
