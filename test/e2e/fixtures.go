package e2e

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
)

// EvidenceFixture is a minimal evidence file of one media kind.
type EvidenceFixture struct {
	Name string
	Kind evidence.Kind
	Data []byte
}

// EvidenceFixtures returns one sample per supported kind. Images are textured
// so they decode and score above zero; video and document samples carry only
// the headers needed for type detection.
func EvidenceFixtures() []EvidenceFixture {
	return []EvidenceFixture{
		{Name: "street.png", Kind: evidence.KindImage, Data: texturedPNG(96, 96)},
		{Name: "house.jpg", Kind: evidence.KindImage, Data: texturedJPEG(96, 96)},
		{Name: "walkthrough.mp4", Kind: evidence.KindVideo, Data: minimalMP4()},
		{Name: "estimate.pdf", Kind: evidence.KindDocument, Data: minimalPDF()},
	}
}

func textured(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			v := uint8((x*7 + y*13) % 256)
			if (x/8+y/8)%2 == 0 {
				v = 255 - v
			}
			img.Set(x, y, color.RGBA{R: v, G: uint8(x * 2), B: uint8(y * 2), A: 255})
		}
	}
	return img
}

func texturedPNG(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, textured(w, h))
	return buf.Bytes()
}

func texturedJPEG(w, h int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, textured(w, h), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func minimalMP4() []byte {
	ftyp := []byte{0x00, 0x00, 0x00, 0x18}
	ftyp = append(ftyp, []byte("ftypmp42")...)
	ftyp = append(ftyp, 0x00, 0x00, 0x00, 0x00)
	ftyp = append(ftyp, []byte("mp42isom")...)
	return append(ftyp, make([]byte, 64)...)
}

func minimalPDF() []byte {
	return []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")
}
