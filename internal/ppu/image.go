package ppu

import (
	"image"
	"image/color"
)

const (
	Width  = 256
	Height = 240
)

// RGB is one output pixel.
type RGB struct {
	R, G, B uint8
}

// Brightness returns the channel sum used by monochrome renderers.
func (c RGB) Brightness() int {
	return int(c.R) + int(c.G) + int(c.B)
}

// Image is a Height x Width grid of pixels, row major.
type Image struct {
	pixels [Width * Height]RGB
}

// NewImage returns a black frame.
func NewImage() *Image {
	return &Image{}
}

func (img *Image) Width() int  { return Width }
func (img *Image) Height() int { return Height }

// Pixel returns the colour at (x, y). Coordinates outside the frame read black.
func (img *Image) Pixel(x, y int) RGB {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return RGB{}
	}
	return img.pixels[y*Width+x]
}

// Set stores a colour at (x, y). Writes outside the frame are dropped.
func (img *Image) Set(x, y int, c RGB) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	img.pixels[y*Width+x] = c
}

// Fill paints the whole frame.
func (img *Image) Fill(c RGB) {
	for i := range img.pixels {
		img.pixels[i] = c
	}
}

// CopyTo writes the frame into dst, which must be at least Width x Height.
func (img *Image) CopyTo(dst *image.RGBA) {
	for y := 0; y < Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < Width; x++ {
			c := img.pixels[y*Width+x]
			row[x*4] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = 0xFF
		}
	}
}

// RGBA returns a standard library copy of the frame.
func (img *Image) RGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	img.CopyTo(dst)
	return dst
}

// RGBA implements color.Color so a pixel can be handed to image/draw.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}.RGBA()
}
