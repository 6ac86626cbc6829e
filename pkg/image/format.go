package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format names match the names the codecs register with image.RegisterFormat
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ErrUnsupportedFormat is returned for an extension or format the padder cannot write
var ErrUnsupportedFormat = errors.New("unsupported image format")

// formatByExt decides both which file names can be padded and how the output is encoded
var formatByExt = map[string]Format{
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"webp": FormatWEBP,
}

// SupportedExtensions lists every extension the padder can handle, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(formatByExt))
	for ext := range formatByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FormatForExtension looks up an extension with or without its dot, case-insensitively
func FormatForExtension(ext string) (Format, bool) {
	f, ok := formatByExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return f, ok
}

// FormatOf resolves a file name to its output format
func FormatOf(filename string) (Format, bool) {
	ext := ExtensionOf(filename)
	if ext == "" {
		return "", false
	}
	return FormatForExtension(ext)
}

// ExtensionOf returns the lowercased text after the last dot of a file name, or "" when there is none
func ExtensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// DecodeFile decodes an image file by content, so a misnamed file still decodes.
// The returned Format is the codec that matched.
func DecodeFile(path string) (image.Image, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, name, err := image.Decode(f)
	if err != nil {
		return nil, Format(name), fmt.Errorf("decode %s: %w", path, err)
	}
	return img, Format(name), nil
}
