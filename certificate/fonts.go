package certificate

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/singleflight"
)

// Font names known to BuiltinFonts.
const (
	FontRegular    = "regular"
	FontBold       = "bold"
	FontItalic     = "italic"
	FontBoldItalic = "bold-italic"
)

// FontLoader returns the TTF bytes of a named font.
type FontLoader func(name string) ([]byte, error)

// BuiltinFonts serves the Go font family.
func BuiltinFonts(name string) ([]byte, error) {
	switch name {
	case FontRegular:
		return goregular.TTF, nil
	case FontBold:
		return gobold.TTF, nil
	case FontItalic:
		return goitalic.TTF, nil
	case FontBoldItalic:
		return gobolditalic.TTF, nil
	}
	return nil, fmt.Errorf("unknown font %q", name)
}

// FontRegistry caches parsed fonts by name. A font is loaded on first use; concurrent
// first uses share one load, and a failed load is not kept so the next call retries.
type FontRegistry struct {
	mu    sync.RWMutex
	fonts map[string]*truetype.Font
	group singleflight.Group
	load  FontLoader
}

func NewFontRegistry(load FontLoader) *FontRegistry {
	if load == nil {
		load = BuiltinFonts
	}
	return &FontRegistry{fonts: make(map[string]*truetype.Font), load: load}
}

// Face returns a new face of the named font. Faces are not safe for concurrent use, so
// every caller gets its own.
func (r *FontRegistry) Face(name string, size float64) (font.Face, error) {
	f, err := r.font(name)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Loaded reports whether name is cached.
func (r *FontRegistry) Loaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fonts[name]
	return ok
}

func (r *FontRegistry) font(name string) (*truetype.Font, error) {
	r.mu.RLock()
	f, ok := r.fonts[name]
	r.mu.RUnlock()
	if ok {
		return f, nil
	}

	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		raw, err := r.load(name)
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", name, err)
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		r.mu.Lock()
		r.fonts[name] = parsed
		r.mu.Unlock()
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*truetype.Font), nil
}
