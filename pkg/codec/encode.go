package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultQuality is the JPEG quality used when the caller passes 0.
const DefaultQuality = 80

// EncodeJPEG writes img to w as JPEG at the given quality (1–100).
// A quality of 0 selects DefaultQuality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality == 0 {
		quality = DefaultQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// WriteJPEG encodes img to path, unconditionally replacing any existing
// file.
func WriteJPEG(path string, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return WriteFile(path, buf.Bytes())
}

// WriteFile writes data to path, unconditionally replacing any existing
// file. The bytes go to a uuid-named temporary file in the destination
// directory first and are renamed into place, so readers never observe a
// partially written output.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
