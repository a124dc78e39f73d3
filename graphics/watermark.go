package graphics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
)

// Watermarks are deterrents only. They discourage casual screen capture and carry the
// viewer's identity; they do not protect the content in any enforceable way.

const (
	diagonalAngle   = -30.0
	diagonalOpacity = 0.12
	cornerOpacity   = 0.55
)

// DiagonalWatermark renders a transparent width x height PNG tiled with the viewer's
// identity at a diagonal.
func DiagonalWatermark(width, height int, identity string) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid watermark size %dx%d", width, height)
	}
	size := float64(height) / 18
	if size < 14 {
		size = 14
	}
	ff, err := face(true, size)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetFontFace(ff)
	dc.SetRGBA(0.5, 0.5, 0.5, diagonalOpacity)

	w, h := float64(width), float64(height)
	tw, _ := dc.MeasureString(identity)
	stepX := tw + size*3
	stepY := size * 5

	dc.RotateAbout(gg.Radians(diagonalAngle), w/2, h/2)
	// the rotated grid must still cover the corners, so overdraw by the diagonal length
	span := w + h
	row := 0
	for y := -span / 2; y < h+span/2; y += stepY {
		offset := 0.0
		if row%2 == 1 {
			offset = stepX / 2
		}
		for x := -span/2 + offset; x < w+span/2; x += stepX {
			dc.DrawStringAnchored(identity, x, y, 0.5, 0.5)
		}
		row++
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CornerWatermark renders a small badge with identity and timestamp.
func CornerWatermark(identity string, at time.Time) ([]byte, error) {
	ff, err := face(false, 13)
	if err != nil {
		return nil, err
	}
	label := fmt.Sprintf("%s · %s", identity, at.UTC().Format("2006-01-02 15:04 UTC"))

	probe := gg.NewContext(1, 1)
	probe.SetFontFace(ff)
	tw, th := probe.MeasureString(label)

	width, height := int(tw)+20, int(th)+14
	dc := gg.NewContext(width, height)
	dc.SetRGBA(0, 0, 0, cornerOpacity)
	dc.DrawRoundedRectangle(0, 0, float64(width), float64(height), 6)
	dc.Fill()
	dc.SetFontFace(ff)
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawStringAnchored(label, float64(width)/2, float64(height)/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
