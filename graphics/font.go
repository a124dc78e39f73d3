// Package graphics renders the PNG overlays and images the platform serves: viewer
// watermarks, certificates and course thumbnails.
package graphics

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce    sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontErr     error
)

func loadFonts() error {
	fontOnce.Do(func() {
		regularFont, fontErr = truetype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		boldFont, fontErr = truetype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return fmt.Errorf("parse embedded font: %w", fontErr)
	}
	return nil
}

func face(bold bool, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	f := regularFont
	if bold {
		f = boldFont
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingNone}), nil
}
