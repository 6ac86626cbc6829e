package image

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// SaveImage saves an image to file with specified format
func SaveImage(img image.Image, path string, format Format) error {
	return SaveImageWithQuality(img, path, format, 90)
}

// SaveImageWithQuality saves an image to file with specified format and quality.
// A partially written file is removed when encoding fails.
func SaveImageWithQuality(img image.Image, path string, format Format, quality int) (err error) {
	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cErr := file.Close(); cErr != nil && err == nil {
			err = cErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := Encode(file, img, format, quality); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// Encode writes img in the given format. JPEG and BMP carry no alpha channel, so transparency is dropped there.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		encoder := &png.Encoder{CompressionLevel: png.BestCompression}
		return encoder.Encode(w, img)
	case FormatGIF:
		return gif.Encode(w, toTransparentPaletted(img), nil)
	case FormatWEBP:
		// x/image/webp only decodes; fall back to JPEG bytes
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

const (
	// a GIF palette holds 256 entries; one is kept for the transparent slot
	gifOpaqueColors = 255
	// pixels below this alpha become the transparent index
	gifAlphaThreshold = 128
)

// toTransparentPaletted builds a palette from the image's own colours plus a trailing transparent entry.
// Up to 255 distinct opaque colours are kept exactly; beyond that the most frequent colours are used.
func toTransparentPaletted(img image.Image) *image.Paletted {
	src := ToNRGBA(img)
	bounds := src.Bounds()

	opaque := exactPalette(src)
	if opaque == nil {
		opaque = popularityPalette(src)
	}
	pal := append(opaque, color.Transparent)
	transparent := uint8(len(pal) - 1)

	dst := image.NewPaletted(bounds, pal)
	index := make(map[color.NRGBA]uint8, len(opaque))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			if c.A < gifAlphaThreshold {
				dst.SetColorIndex(x, y, transparent)
				continue
			}
			c.A = 0xff
			i, ok := index[c]
			if !ok {
				i = uint8(opaque.Index(c))
				index[c] = i
			}
			dst.SetColorIndex(x, y, i)
		}
	}
	return dst
}

// exactPalette returns the distinct opaque colours of img, or nil when there are too many
func exactPalette(img *image.NRGBA) color.Palette {
	seen := make(map[color.NRGBA]struct{})
	pal := color.Palette{}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A < gifAlphaThreshold {
				continue
			}
			c.A = 0xff
			if _, ok := seen[c]; ok {
				continue
			}
			if len(pal) == gifOpaqueColors {
				return nil
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal
}

type colorBucket struct {
	key     uint16
	r, g, b uint64
	n       uint64
}

// popularityPalette groups opaque pixels by their top five bits per channel and
// returns the mean colour of the most populated groups
func popularityPalette(img *image.NRGBA) color.Palette {
	buckets := make(map[uint16]*colorBucket)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A < gifAlphaThreshold {
				continue
			}
			key := uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
			bk, ok := buckets[key]
			if !ok {
				bk = &colorBucket{key: key}
				buckets[key] = bk
			}
			bk.r += uint64(c.R)
			bk.g += uint64(c.G)
			bk.b += uint64(c.B)
			bk.n++
		}
	}

	ranked := make([]*colorBucket, 0, len(buckets))
	for _, bk := range buckets {
		ranked = append(ranked, bk)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].key < ranked[j].key
	})
	if len(ranked) > gifOpaqueColors {
		ranked = ranked[:gifOpaqueColors]
	}

	pal := make(color.Palette, 0, len(ranked))
	for _, bk := range ranked {
		pal = append(pal, color.NRGBA{
			R: uint8(bk.r / bk.n),
			G: uint8(bk.g / bk.n),
			B: uint8(bk.b / bk.n),
			A: 0xff,
		})
	}
	return pal
}
