// Package imaging normalizes uploaded asset photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/assettrack/internal/model"
)

const (
	// MaxDimension bounds the width and height of a stored photo.
	MaxDimension = 1024
	// JPEGQuality is the quality stored photos are encoded with.
	JPEGQuality = 85
	// MaxUploadBytes bounds the size of an uploaded image.
	MaxUploadBytes = 10 << 20
)

// ContentType of every processed photo.
const ContentType = "image/jpeg"

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a processed image ready to be stored.
type Photo struct {
	Data   []byte
	Width  int
	Height int
}

// Process sniffs the upload, rejects anything but JPEG or PNG, shrinks it to
// fit MaxDimension and re-encodes it as JPEG. Rejected input is reported as
// *model.ValidationError.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, invalid("photo must be at most 10 MiB")
	}

	if kind := http.DetectContentType(data); !accepted[kind] {
		return nil, invalid(fmt.Sprintf("unsupported photo format %s, use JPEG or PNG", kind))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("photo could not be decoded")
	}

	img := flatten(src, fit(src.Bounds(), MaxDimension))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}

	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// fit returns the size of b scaled down, keeping its aspect ratio, so that
// neither side exceeds limit. Smaller images keep their size.
func fit(b image.Rectangle, limit int) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return image.Rect(0, 0, w, h)
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	return image.Rect(0, 0, max(w, 1), max(h, 1))
}

// flatten draws src onto a white canvas of the given size. JPEG has no alpha
// channel, so transparent PNG regions become white instead of black.
func flatten(src image.Image, size image.Rectangle) image.Image {
	dst := image.NewRGBA(size)
	draw.Draw(dst, size, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if size.Size() == src.Bounds().Size() {
		draw.Draw(dst, size, src, src.Bounds().Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, size, src, src.Bounds(), draw.Over, nil)
	}
	return dst
}

func invalid(msg string) error {
	return &model.ValidationError{Field: "photo", Message: msg}
}

// IsRejected reports whether err means the upload itself was unacceptable.
func IsRejected(err error) bool {
	var ve *model.ValidationError
	return errors.As(err, &ve) && ve.Field == "photo"
}
