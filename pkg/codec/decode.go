// Package codec handles image decoding and encoding at the tool boundary.
//
// Decoding dispatches on sniffed content signatures rather than file
// extensions: each registered format declares a magic-byte matcher, and the
// extension is consulted only as a fallback hint when no signature matches.
// JPEG, PNG and GIF come from the standard library; TIFF, BMP and WebP from
// golang.org/x/image.
//
// Encoding is JPEG-only. Output files are written through a uniquely named
// temporary file and renamed into place, so a destination is either the old
// file or the complete new one, never a partial write.
package codec

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/matzehuels/fourup/pkg/errors"
)

// Format describes one decodable image format.
type Format struct {
	// Name is the canonical lowercase format name, e.g. "jpeg".
	Name string

	// Match reports whether the leading bytes carry this format's
	// signature. Matchers receive at least sniffLen bytes when available.
	Match func(head []byte) bool

	// Extensions lists lowercase filename extensions (with dot) used as a
	// hint when no signature matches.
	Extensions []string

	// Decode decodes a full image from r.
	Decode func(r io.Reader) (image.Image, error)
}

// sniffLen is how many leading bytes matchers may inspect. 12 covers the
// longest registered signature (RIFF....WEBP).
const sniffLen = 12

// formats is the decoder registry, checked in order.
var formats = []Format{
	{
		Name:       "jpeg",
		Match:      func(h []byte) bool { return bytes.HasPrefix(h, []byte{0xff, 0xd8, 0xff}) },
		Extensions: []string{".jpg", ".jpeg"},
		Decode:     jpeg.Decode,
	},
	{
		Name:       "png",
		Match:      func(h []byte) bool { return bytes.HasPrefix(h, []byte("\x89PNG\r\n\x1a\n")) },
		Extensions: []string{".png"},
		Decode:     png.Decode,
	},
	{
		Name: "gif",
		Match: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("GIF87a")) || bytes.HasPrefix(h, []byte("GIF89a"))
		},
		Extensions: []string{".gif"},
		Decode:     gif.Decode,
	},
	{
		Name: "webp",
		Match: func(h []byte) bool {
			return len(h) >= 12 && bytes.Equal(h[:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WEBP"))
		},
		Extensions: []string{".webp"},
		Decode:     webp.Decode,
	},
	{
		Name: "tiff",
		Match: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("II*\x00")) || bytes.HasPrefix(h, []byte("MM\x00*"))
		},
		Extensions: []string{".tif", ".tiff"},
		Decode:     tiff.Decode,
	},
	{
		Name:       "bmp",
		Match:      func(h []byte) bool { return bytes.HasPrefix(h, []byte("BM")) },
		Extensions: []string{".bmp"},
		Decode:     bmp.Decode,
	},
}

// Sniff identifies the format of data by its leading bytes.
func Sniff(data []byte) (*Format, bool) {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	for i := range formats {
		if formats[i].Match(head) {
			return &formats[i], true
		}
	}
	return nil, false
}

// byExtension finds a format whose extension list contains ext.
func byExtension(ext string) (*Format, bool) {
	ext = strings.ToLower(ext)
	for i := range formats {
		for _, e := range formats[i].Extensions {
			if e == ext {
				return &formats[i], true
			}
		}
	}
	return nil, false
}

// Extensions returns every filename extension the registry can decode,
// lowercase with the leading dot.
func Extensions() []string {
	var exts []string
	for i := range formats {
		exts = append(exts, formats[i].Extensions...)
	}
	return exts
}

// extOf extracts the filename extension from a source reference. The
// reference may be a bare extension, a path, or a URL with a query string.
func extOf(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Ext(ref)
}

// Decode decodes an image, identifying the format by content signature.
// hint is an optional source reference (path, URL, or bare ".jpg"-style
// extension) whose extension is consulted only when no signature matches;
// pass "" when the source has no meaningful name.
//
// Returns the decoded image and the canonical format name, or an
// UNSUPPORTED_FORMAT error when neither signature nor hint identifies the
// content, and an INVALID_IMAGE error when the format is recognized but the
// data does not decode.
func Decode(data []byte, hint string) (image.Image, string, error) {
	f, ok := Sniff(data)
	if !ok {
		f, ok = byExtension(extOf(hint))
	}
	if !ok {
		return nil, "", errors.New(errors.ErrCodeUnsupportedFormat,
			"unrecognized image format (no known signature, hint %q)", hint)
	}

	img, err := f.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, f.Name, errors.Wrap(errors.ErrCodeInvalidImage, err,
			"corrupt %s data", f.Name)
	}
	return img, f.Name, nil
}
