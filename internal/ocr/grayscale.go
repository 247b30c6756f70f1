package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	"image/png"
	"math"

	_ "golang.org/x/image/webp" // register decoder

	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// Luma weights (ITU-R BT.601).
const (
	weightR = 0.299
	weightG = 0.587
	weightB = 0.114
)

// toGrayscale decodes img, replaces every pixel's color channels with its
// luma and re-encodes as PNG. Alpha is kept as is.
func toGrayscale(img domain.Image) (domain.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			g := luma(c.R, c.G, c.B)
			dst.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: c.A})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return domain.Image{}, fmt.Errorf("encode grayscale: %w", err)
	}
	return domain.Image{Data: buf.Bytes(), MIME: domain.MIMEPNG}, nil
}

func luma(r, g, b uint8) uint8 {
	return uint8(math.Round(weightR*float64(r) + weightG*float64(g) + weightB*float64(b)))
}
