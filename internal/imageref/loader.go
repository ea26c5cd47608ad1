// Package imageref turns background image files into the opaque data-URL
// reference stored in documents, plus a small preview for the terminal.
package imageref

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PreviewMax bounds the longer side of the preview in pixels.
const PreviewMax = 256

var (
	ErrNotImage   = errors.New("not an image")
	ErrBadDataURL = errors.New("bad data url")
)

// Image is a loaded background.
type Image struct {
	Ref     string // data:<mime>;base64,...
	MIME    string
	Width   int
	Height  int
	Preview image.Image
}

// Load reads an image file and builds its reference and preview.
func Load(path string) (Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	return FromBytes(b)
}

// FromBytes sniffs and decodes raw image bytes.
func FromBytes(b []byte) (Image, error) {
	if !filetype.IsImage(b) {
		return Image{}, ErrNotImage
	}
	kind, err := filetype.Match(b)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	img, err := decode(b)
	if err != nil {
		return Image{}, err
	}
	ref := "data:" + kind.MIME.Value + ";base64," + base64.StdEncoding.EncodeToString(b)
	return newImage(ref, kind.MIME.Value, img), nil
}

// FromDataURL decodes a reference previously produced by Load. Documents
// from elsewhere may carry any string; only base64 data URLs of a known
// image type are accepted.
func FromDataURL(ref string) (Image, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return Image{}, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Image{}, ErrBadDataURL
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrBadDataURL, err)
	}
	if !filetype.IsImage(b) {
		return Image{}, ErrNotImage
	}
	img, err := decode(b)
	if err != nil {
		return Image{}, err
	}
	return newImage(ref, strings.TrimSuffix(meta, ";base64"), img), nil
}

func decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func newImage(ref, mime string, img image.Image) Image {
	bnds := img.Bounds()
	return Image{
		Ref:     ref,
		MIME:    mime,
		Width:   bnds.Dx(),
		Height:  bnds.Dy(),
		Preview: preview(img, PreviewMax),
	}
}

func preview(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return imaging.Clone(img)
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}
