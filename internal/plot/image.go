package plot

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// Image is a raster surface that can be written out as PNG.
type Image struct {
	img        *image.RGBA
	Background color.Color
	Ink        color.Color
}

// NewImage creates a blank raster of the given pixel size.
func NewImage(width, height int) *Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	im := &Image{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		Background: color.RGBA{R: 0x0d, G: 0x11, B: 0x17, A: 0xff},
		Ink:        color.RGBA{R: 0x0b, G: 0xa5, B: 0xec, A: 0xff},
	}
	im.Clear()
	return im
}

func (im *Image) Size() (int, int) {
	b := im.img.Bounds()
	return b.Dx(), b.Dy()
}

func (im *Image) Clear() {
	b := im.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			im.img.Set(x, y, im.Background)
		}
	}
}

// FillCircle paints every pixel whose center lies within r of (cx, cy).
func (im *Image) FillCircle(cx, cy, r float64) {
	b := im.img.Bounds()
	x0 := max(b.Min.X, int(math.Floor(cx-r)))
	x1 := min(b.Max.X-1, int(math.Ceil(cx+r)))
	y0 := max(b.Min.Y, int(math.Floor(cy-r)))
	y1 := min(b.Max.Y-1, int(math.Ceil(cy+r)))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				im.img.Set(x, y, im.Ink)
			}
		}
	}
}

// At returns the color at pixel (x, y).
func (im *Image) At(x, y int) color.Color { return im.img.At(x, y) }

// WritePNG encodes the surface as PNG.
func (im *Image) WritePNG(w io.Writer) error {
	return png.Encode(w, im.img)
}
