package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/erazemk/assettrack/internal/model"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	return cfg.Width, cfg.Height
}

func TestProcessKeepsSmallPhotos(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodeJPEG(t, solid(50, 30, color.RGBA{255, 0, 0, 255}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.Width != 50 || photo.Height != 30 {
		t.Errorf("expected 50x30, got %dx%d", photo.Width, photo.Height)
	}
	if w, h := decodeSize(t, photo.Data); w != 50 || h != 30 {
		t.Errorf("expected encoded 50x30, got %dx%d", w, h)
	}
}

func TestProcessDownscales(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 2048, 1024, 1024, 512},
		{"portrait", 1000, 3000, 341, 1024},
		{"square", 1500, 1500, 1024, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo, err := Process(bytes.NewReader(encodeJPEG(t, solid(tt.w, tt.h, color.Gray{128}))))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if photo.Width != tt.wantW || photo.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, photo.Width, photo.Height)
			}
			if w, h := decodeSize(t, photo.Data); w != tt.wantW || h != tt.wantH {
				t.Errorf("expected encoded %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestProcessPNGBecomesJPEG(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(t, solid(40, 40, color.RGBA{0, 0, 255, 255}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	decodeSize(t, photo.Data)
}

func TestProcessFlattensTransparency(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(t, solid(20, 20, color.RGBA{}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r < 0xf000 || g < 0xf000 || b < 0xf000 {
		t.Errorf("expected transparent pixels to become white, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestProcessRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("not an image")},
		{"gif", []byte("GIF89a...")},
		{"truncated jpeg", encodeJPEG(t, solid(10, 10, color.Black))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(bytes.NewReader(tt.data))
			if !model.IsValidation(err) || !IsRejected(err) {
				t.Errorf("expected photo ValidationError, got %v", err)
			}
		})
	}
}

func TestProcessRejectsOversized(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, encodeJPEG(t, solid(10, 10, color.Black)))
	_, err := Process(bytes.NewReader(data))
	if !IsRejected(err) {
		t.Errorf("expected oversized upload rejected, got %v", err)
	}
}
