package producer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Pattern renders the test image: a horizontal gradient that scrolls one step
// per frame, a bar that sweeps top to bottom and the frame number.
type Pattern struct {
	img *image.RGBA
}

func NewPattern(width, height int) *Pattern {
	return &Pattern{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (p *Pattern) Image() *image.RGBA { return p.img }

// Render draws frame n.
func (p *Pattern) Render(n int) {
	b := p.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	for x := 0; x < w; x++ {
		v := uint8((x + n*4) * 255 / w)
		c := color.RGBA{R: v, G: 255 - v, B: uint8(n), A: 255}
		for y := 0; y < h; y++ {
			p.img.SetRGBA(x, y, c)
		}
	}

	barHeight := max(h/20, 1)
	top := (n * 8) % h
	bar := image.Rect(0, top, w, min(top+barHeight, h))
	draw.Draw(p.img, bar, image.NewUniform(color.White), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 8+basicfont.Face7x13.Ascent),
	}
	label := fmt.Sprintf("frame %d", n)
	box := image.Rect(4, 4, 12+d.MeasureString(label).Ceil(), 12+basicfont.Face7x13.Height)
	draw.Draw(p.img, box.Intersect(b), image.NewUniform(color.White), image.Point{}, draw.Src)
	d.DrawString(label)
}

// CopyXRGB writes the image into dst as little-endian XRGB8888 rows of the
// given stride.
func CopyXRGB(dst []byte, stride int, img *image.RGBA) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if stride < w*4 {
		return fmt.Errorf("stride %d too small for width %d", stride, w)
	}
	if h > 0 && len(dst) < (h-1)*stride+w*4 {
		return fmt.Errorf("destination holds %d bytes, %dx%d at stride %d needs more", len(dst), w, h, stride)
	}
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		row := dst[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4]
			row[x*4+0] = s[2]
			row[x*4+1] = s[1]
			row[x*4+2] = s[0]
			row[x*4+3] = 0xff
		}
	}
	return nil
}
