package image

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// ErrInvalidMargins is returned for a negative margin
var ErrInvalidMargins = errors.New("border margins must be non-negative")

// Processor provides image processing functions
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Margins are the per-side border sizes in pixels
type Margins struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// UniformMargins returns the same margin on every side
func UniformMargins(width int) Margins {
	return Margins{Top: width, Bottom: width, Left: width, Right: width}
}

func (m Margins) Validate() error {
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return ErrInvalidMargins
	}
	return nil
}

// ToNRGBA normalizes any colour model to 8-bit non-premultiplied RGBA, rebased at the origin
func ToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return nrgba
	}
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// AddTransparentBorder enlarges an image by the margins. The original pixels land unscaled
// at (Left, Top) and the new area stays fully transparent.
func (p *Processor) AddTransparentBorder(img image.Image, m Margins) *image.NRGBA {
	src := ToNRGBA(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()

	// NewNRGBA is zeroed, so the canvas starts as (0,0,0,0)
	canvas := image.NewNRGBA(image.Rect(0, 0, width+m.Left+m.Right, height+m.Top+m.Bottom))
	target := image.Rect(m.Left, m.Top, m.Left+width, m.Top+height)
	draw.Draw(canvas, target, src, image.Point{}, draw.Src)
	return canvas
}
