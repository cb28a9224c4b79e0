package renderer

import "fmt"

// Rotation is a clockwise display rotation in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

func ParseRotation(degrees int) (Rotation, error) {
	switch r := Rotation(degrees); r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return r, nil
	default:
		return Rotate0, fmt.Errorf("%w: %d (supported: 0, 90, 180, 270)", ErrUnsupportedRotation, degrees)
	}
}

// Geometry describes how a rotated frame maps onto the display quad and how
// input coordinates map back onto the frame.
type Geometry struct {
	// Width and Height are the logical size seen by the producer.
	Width  uint32
	Height uint32
	// InputTransform maps display coordinates to frame coordinates:
	// x' = x*t[0] + y*t[2] + t[4], y' = x*t[1] + y*t[3] + t[5].
	InputTransform [6]float32
	Positions      [4][2]float32
	TexCoords      [4][2]float32
}

var quadPositions = [4][2]float32{
	{-1, 1}, {1, 1},
	{-1, -1}, {1, -1},
}

// NewGeometry computes the quad for a display of width x height pixels.
func NewGeometry(r Rotation, width, height uint32) (Geometry, error) {
	w, h := float32(width), float32(height)
	g := Geometry{Width: width, Height: height, Positions: quadPositions}

	switch r {
	case Rotate0:
		g.InputTransform = [6]float32{1, 0, 0, 1, 0, 0}
		g.TexCoords = [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	case Rotate90:
		g.Width, g.Height = height, width
		g.InputTransform = [6]float32{0, 1, -1, 0, h, 0}
		g.TexCoords = [4][2]float32{{1, 0}, {1, 1}, {0, 0}, {0, 1}}
	case Rotate180:
		g.InputTransform = [6]float32{-1, 0, 0, -1, w, h}
		g.TexCoords = [4][2]float32{{1, 1}, {0, 1}, {1, 0}, {0, 0}}
	case Rotate270:
		g.Width, g.Height = height, width
		g.InputTransform = [6]float32{0, -1, 1, 0, 0, w}
		g.TexCoords = [4][2]float32{{0, 1}, {0, 0}, {1, 1}, {1, 0}}
	default:
		return Geometry{}, fmt.Errorf("%w: %d", ErrUnsupportedRotation, r)
	}
	return g, nil
}

// TransformInput maps a point in display coordinates to frame coordinates.
func (g Geometry) TransformInput(x, y float32) (float32, float32) {
	t := g.InputTransform
	return x*t[0] + y*t[2] + t[4], x*t[1] + y*t[3] + t[5]
}
