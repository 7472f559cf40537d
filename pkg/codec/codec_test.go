package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/fourup/pkg/errors"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	return img
}

func encodeAs(t *testing.T, format string, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown test format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	img := testImage(8, 8)
	tests := []struct {
		format string
	}{
		{"jpeg"},
		{"png"},
		{"gif"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data := encodeAs(t, tt.format, img)
			f, ok := Sniff(data)
			if !ok {
				t.Fatalf("Sniff failed to recognize %s data", tt.format)
			}
			if f.Name != tt.format {
				t.Errorf("Sniff name = %q, want %q", f.Name, tt.format)
			}
		})
	}
}

func TestSniffUnknown(t *testing.T) {
	if _, ok := Sniff([]byte("definitely not an image")); ok {
		t.Error("Sniff recognized garbage data")
	}
	if _, ok := Sniff(nil); ok {
		t.Error("Sniff recognized empty data")
	}
}

func TestDecode(t *testing.T) {
	img := testImage(12, 7)
	for _, format := range []string{"jpeg", "png", "gif"} {
		t.Run(format, func(t *testing.T) {
			data := encodeAs(t, format, img)

			// Signature wins even with a misleading hint.
			decoded, name, err := Decode(data, ".tiff")
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if name != format {
				t.Errorf("format = %q, want %q", name, format)
			}
			b := decoded.Bounds()
			if b.Dx() != 12 || b.Dy() != 7 {
				t.Errorf("decoded size = %dx%d, want 12x7", b.Dx(), b.Dy())
			}
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, _, err := Decode([]byte("not an image at all"), "")
	if err == nil {
		t.Fatal("Decode succeeded on garbage")
	}
	if !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnsupportedFormat)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	// Valid PNG signature followed by garbage: recognized but undecodable.
	data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage body")...)
	_, name, err := Decode(data, "")
	if err == nil {
		t.Fatal("Decode succeeded on corrupt png")
	}
	if name != "png" {
		t.Errorf("format = %q, want png", name)
	}
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidImage)
	}
}

func TestDecodeExtensionFallback(t *testing.T) {
	// A headerless matcher miss falls back to the hint, which may be a bare
	// extension or the full source reference. Craft data that no signature
	// matches but that the hinted decoder also rejects: the point is that
	// dispatch reached the hinted format.
	tests := []struct {
		name string
		hint string
	}{
		{"bare extension", ".png"},
		{"relative path", "photos/broken.png"},
		{"absolute path", "/srv/uploads/broken.PNG"},
		{"url with query", "https://img.example.com/broken.png?w=256"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, name, err := Decode([]byte("zzzzzzzzzzzzzzzz"), tt.hint)
			if err == nil {
				t.Fatal("Decode succeeded unexpectedly")
			}
			if name != "png" {
				t.Errorf("format = %q, want png (from hint)", name)
			}
			if !errors.Is(err, errors.ErrCodeInvalidImage) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidImage)
			}
		})
	}
}

func TestExtensions(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range Extensions() {
		seen[e] = true
	}
	for _, want := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".tif", ".tiff", ".bmp"} {
		if !seen[want] {
			t.Errorf("Extensions missing %s", want)
		}
	}
}

func TestWriteJPEG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jpg")

	if err := WriteJPEG(path, testImage(16, 16), 90); err != nil {
		t.Fatalf("WriteJPEG: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	f, ok := Sniff(data)
	if !ok || f.Name != "jpeg" {
		t.Fatalf("output is not jpeg")
	}

	// Overwrite must replace the previous file.
	if err := WriteJPEG(path, testImage(8, 8), 90); err != nil {
		t.Fatalf("WriteJPEG overwrite: %v", err)
	}
	data2, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read overwritten output: %v", err)
	}
	if bytes.Equal(data, data2) {
		t.Error("overwrite did not replace output")
	}

	// No temp droppings left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want 1", len(entries))
	}
}
