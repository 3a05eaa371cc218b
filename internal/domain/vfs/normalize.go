package vfs

import (
	"net/url"
	"strings"
)

// Normalize parses raw as scheme://segments: segments are URL-decoded,
// backslashes are folded to slashes, empty segments collapse, and any
// "." or ".." segment is rejected outright. Normalization is total
// over well-formed scheme/encoding input; it fails only for scheme
// errors, traversal, NUL bytes, or malformed percent-encoding.
func Normalize(raw string) (Path, error) {
	schemeSep := strings.Index(raw, "://")
	if schemeSep < 0 {
		return Path{}, ErrInvalidPath
	}
	scheme := Scheme(raw[:schemeSep])
	if !scheme.valid() {
		return Path{}, ErrInvalidPath
	}
	rest := raw[schemeSep+3:]
	if strings.ContainsRune(rest, 0) {
		return Path{}, ErrInvalidPath
	}
	rest = strings.ReplaceAll(rest, "\\", "/")

	rawSegments := strings.Split(rest, "/")
	segments := make([]string, 0, len(rawSegments))
	for _, seg := range rawSegments {
		if seg == "" {
			continue
		}
		decoded, err := url.QueryUnescape(seg)
		if err != nil {
			return Path{}, ErrInvalidPath
		}
		if strings.ContainsRune(decoded, 0) {
			return Path{}, ErrInvalidPath
		}
		if decoded == "." || decoded == ".." {
			return Path{}, ErrInvalidPath
		}
		segments = append(segments, decoded)
	}

	return Path{Scheme: scheme, Segments: segments}, nil
}
