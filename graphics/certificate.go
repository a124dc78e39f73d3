package graphics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
)

// CertificateData is what gets printed on a certificate
type CertificateData struct {
	HolderName  string
	CourseTitle string
	Number      string
	Issuer      string
	Score       float64
	IssuedAt    time.Time
}

const (
	certWidth  = 1600
	certHeight = 1131
)

// RenderCertificate draws a landscape certificate and returns it as PNG.
func RenderCertificate(d CertificateData) ([]byte, error) {
	title, err := face(true, 64)
	if err != nil {
		return nil, err
	}
	name, err := face(true, 54)
	if err != nil {
		return nil, err
	}
	body, err := face(false, 30)
	if err != nil {
		return nil, err
	}
	small, err := face(false, 22)
	if err != nil {
		return nil, err
	}

	w, h := float64(certWidth), float64(certHeight)
	dc := gg.NewContext(certWidth, certHeight)
	dc.SetRGB(1, 1, 0.97)
	dc.Clear()

	dc.SetRGB(0.84, 0.71, 0.43)
	dc.SetLineWidth(14)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()
	dc.SetLineWidth(3)
	dc.DrawRectangle(70, 70, w-140, h-140)
	dc.Stroke()

	dc.SetRGB(0, 0, 0.3)
	dc.SetFontFace(title)
	dc.DrawStringAnchored("Certificate of Completion", w/2, 260, 0.5, 0.5)

	dc.SetFontFace(body)
	dc.SetRGB(0.25, 0.25, 0.25)
	dc.DrawStringAnchored("This certifies that", w/2, 380, 0.5, 0.5)

	dc.SetFontFace(name)
	dc.SetRGB(0, 0, 0.3)
	dc.DrawStringAnchored(d.HolderName, w/2, 480, 0.5, 0.5)

	dc.SetFontFace(body)
	dc.SetRGB(0.25, 0.25, 0.25)
	dc.DrawStringAnchored("has successfully completed the course", w/2, 580, 0.5, 0.5)
	dc.DrawStringWrapped(d.CourseTitle, w/2, 660, 0.5, 0.5, w-400, 1.4, gg.AlignCenter)
	dc.DrawStringAnchored(fmt.Sprintf("with a final exam score of %.0f%%", d.Score), w/2, 760, 0.5, 0.5)

	dc.SetFontFace(small)
	dc.DrawStringAnchored(d.IssuedAt.Format("January 2, 2006"), 360, h-200, 0.5, 0.5)
	dc.DrawStringAnchored(d.Issuer, w-360, h-200, 0.5, 0.5)
	dc.DrawStringAnchored("Certificate No. "+d.Number, w/2, h-130, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
