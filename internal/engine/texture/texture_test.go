package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(3, 1, color.RGBA{G: 255, B: 10, A: 255})
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	pngData := encodePNG(t, testImage())

	tests := []struct {
		name    string
		data    []byte
		file    string
		want    string
		wantErr error
	}{
		{"png by magic", pngData, "skin", "png", nil},
		{"png ignores extension", pngData, "skin.tga", "png", nil},
		{"tga by extension", []byte{0, 0, 2, 0}, "skin.TGA", "tga", nil},
		{"unknown", []byte("hello world"), "skin.txt", "", ErrUnsupportedFormat},
		{"gif not decodable", []byte("GIF89a\x01\x00\x01\x00"), "skin.gif", "", ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data, tt.file)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Sniff() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Sniff() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_PNG(t *testing.T) {
	src := testImage()
	img, err := Decode(encodePNG(t, src), "skin.png")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), src.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
	if got := img.RGBAAt(3, 1); got != (color.RGBA{G: 255, B: 10, A: 255}) {
		t.Errorf("pixel (3,1) = %v", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte("not an image"), "x.bin"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	// truncated PNG: magic matches, decode fails
	data := encodePNG(t, testImage())
	if _, err := Decode(data[:20], "x.png"); err == nil {
		t.Error("expected error for truncated png")
	}
}

func TestToRGBA_Offset(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 5))
	src.Set(2, 3, color.NRGBA{R: 9, A: 255})
	dst := ToRGBA(src)
	if dst.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if dst.RGBAAt(0, 0).R != 9 {
		t.Errorf("pixel not moved to origin: %v", dst.RGBAAt(0, 0))
	}
}

func TestExporter_Save(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(filepath.Join(dir, "out"), "skin", "")
	e.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	want := filepath.Join(dir, "out", "skin_2024-05-06_07-08-09.png")
	if got := e.GenerateFilename(); got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}

	path, err := e.Save(testImage())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(data, path)
	if err != nil {
		t.Fatalf("re-decoding export: %v", err)
	}
	if img.RGBAAt(0, 0) != testImage().RGBAAt(0, 0) {
		t.Error("exported pixel mismatch")
	}
}

func TestExporter_WebP(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, "skin", FormatPNG)

	path, err := e.SaveAs(testImage(), filepath.Join(dir, "atlas.webp"))
	if err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	format, err := Sniff(data, path)
	if err != nil || format != FormatWebP {
		t.Fatalf("Sniff(export) = %q, %v", format, err)
	}
	img, err := Decode(data, path)
	if err != nil {
		t.Fatalf("decoding webp export: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Errorf("webp bounds = %v", img.Bounds())
	}
}

func TestEncode_Unknown(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), "jpeg2000"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFromBottomUp(t *testing.T) {
	// 1x2: bottom row red, top row green
	pixels := []byte{
		255, 0, 0, 255,
		0, 255, 0, 255,
	}
	img, err := FromBottomUp(pixels, 1, 2)
	if err != nil {
		t.Fatalf("FromBottomUp: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("top row = %v, want green", got)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("bottom row = %v, want red", got)
	}

	if _, err := FromBottomUp(pixels, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
