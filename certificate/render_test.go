package certificate

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"techlearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleInfo = course.CertificateInfo{
	StudentName:    "Alice Smith",
	CourseTitle:    "Web Development Fundamentals",
	CompletionDate: "July 4, 2025 at 03:07 PM",
	CourseCategory: "Web Development",
	Number:         "TL-0123456789AB",
}

func TestParseTemplate(t *testing.T) {
	for in, want := range map[string]Template{"": TemplateModern, "modern": TemplateModern, " Classic ": TemplateClassic} {
		got, err := ParseTemplate(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTemplate("fancy")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestRenderPNG(t *testing.T) {
	r := NewRenderer(nil)
	for _, tpl := range []Template{TemplateModern, TemplateClassic} {
		raw, err := r.RenderPNG(sampleInfo, tpl)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, canvasWidth, img.Bounds().Dx())
		assert.Equal(t, canvasHeight, img.Bounds().Dy())
	}

	_, err := r.RenderPNG(sampleInfo, Template("fancy"))
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestExportPDF(t *testing.T) {
	e := NewExporter(NewRenderer(nil))

	raw, err := e.ExportPDF(context.Background(), sampleInfo, TemplateClassic)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestExportPDFCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter(NewRenderer(nil)).ExportPDF(ctx, sampleInfo, TemplateModern)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportFailsWhenFontsUnavailable(t *testing.T) {
	fonts := NewFontRegistry(func(string) ([]byte, error) { return nil, errors.New("offline") })

	_, err := NewExporter(NewRenderer(fonts)).ExportPDF(context.Background(), sampleInfo, TemplateModern)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "TechLearn_Web-Development-Fundamentals_Certificate.pdf", FileName("Web Development  Fundamentals"))
}

func TestFontRegistryCachesLoads(t *testing.T) {
	var calls int32
	fonts := NewFontRegistry(func(name string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return BuiltinFonts(name)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fonts.Face(FontBold, 24)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	before := atomic.LoadInt32(&calls)
	assert.GreaterOrEqual(t, before, int32(1))
	_, err := fonts.Face(FontBold, 48)
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&calls))
	assert.True(t, fonts.Loaded(FontBold))
	assert.False(t, fonts.Loaded(FontItalic))
}

func TestFontRegistryRetriesFailedLoads(t *testing.T) {
	fail := true
	calls := 0
	fonts := NewFontRegistry(func(name string) ([]byte, error) {
		calls++
		if fail {
			return nil, errors.New("network error")
		}
		return BuiltinFonts(name)
	})

	_, err := fonts.Face(FontRegular, 12)
	assert.Error(t, err)
	assert.False(t, fonts.Loaded(FontRegular))

	fail = false
	_, err = fonts.Face(FontRegular, 12)
	require.NoError(t, err)
	assert.True(t, fonts.Loaded(FontRegular))
	assert.Equal(t, 2, calls)
}

func TestFontRegistryRejectsGarbage(t *testing.T) {
	fonts := NewFontRegistry(func(string) ([]byte, error) { return []byte("not a font"), nil })

	_, err := fonts.Face(FontRegular, 12)
	assert.Error(t, err)
	assert.False(t, fonts.Loaded(FontRegular))

	_, err = BuiltinFonts("comic")
	assert.Error(t, err)
}
