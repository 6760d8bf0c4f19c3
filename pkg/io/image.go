package io

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/g026r/pocket-gallery/pkg/util"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Extensions are the file types that can be uploaded, decoded & resized.
var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff"}

// IsImage reports whether the file name carries one of the supported extensions.
func IsImage(name string) bool {
	_, err := imaging.FormatFromFilename(name)
	return err == nil
}

// DecodeImage reads an image, applying any EXIF orientation so the pixels are upright.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Resize scales img so it is at most width pixels wide. Images that are already narrow enough are left alone.
func Resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// Fit scales img to fit inside maxW x maxH, keeping the aspect ratio.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := util.FitWithin(b.Dx(), b.Dy(), maxW, maxH)
	if w == 0 || h == 0 || (w == b.Dx() && h == b.Dy()) {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// EncodeImage writes img in the format matching name's extension.
func EncodeImage(w io.Writer, img image.Image, name string) error {
	f, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(filepath.Ext(name)), ErrUnsupportedFormat)
	}
	return imaging.Encode(w, img, f)
}
