package graphics

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Thumbnail sizes used for course cards
const (
	ThumbnailWidth  = 640
	ThumbnailHeight = 360
)

// Thumbnail decodes an uploaded image, crops it to the card ratio and re-encodes as JPEG.
func Thumbnail(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fill(img, ThumbnailWidth, ThumbnailHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
