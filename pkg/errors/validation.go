package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateOutputPath validates a destination path for the composed collage.
// The path must be non-empty, printable, and carry a JPEG extension so the
// encoder and the file name agree on the output format.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") {
		return New(ErrCodeInvalidPath, "output path must end in .jpg or .jpeg: %s", path)
	}

	return nil
}

// ValidateSourceRef validates a source image reference: either a local file
// path or an http(s) URL. It rejects empty refs, control characters, and
// URL schemes other than http and https.
func ValidateSourceRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidInput, "source reference cannot be empty")
	}

	for _, r := range ref {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source reference contains invalid characters")
		}
	}

	if IsRemoteRef(ref) {
		u, err := url.Parse(ref)
		if err != nil {
			return Wrap(ErrCodeInvalidInput, err, "invalid source URL: %s", ref)
		}
		if u.Host == "" {
			return New(ErrCodeInvalidInput, "source URL has no host: %s", ref)
		}
	}

	return nil
}

// IsRemoteRef reports whether a source reference is an http(s) URL rather
// than a local path.
func IsRemoteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ValidateHexColor validates a "#RRGGBB" or "#RGB" color literal as used by
// the --background and --border-color flags and the config file.
func ValidateHexColor(s string) error {
	if s == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !strings.HasPrefix(s, "#") {
		return New(ErrCodeInvalidColor, "color must start with '#': %s", s)
	}

	digits := s[1:]
	if len(digits) != 3 && len(digits) != 6 {
		return New(ErrCodeInvalidColor, "color must be #RGB or #RRGGBB: %s", s)
	}
	for _, r := range digits {
		if !isHexDigit(r) {
			return New(ErrCodeInvalidColor, "color contains non-hex digit %q: %s", r, s)
		}
	}
	return nil
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
