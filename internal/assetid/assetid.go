package assetid

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidID is returned when an id cannot be decoded to a safe relative
// path. It covers malformed encoding, absolute paths, and traversal attempts.
var ErrInvalidID = errors.New("invalid asset id")

// Encode maps a library-relative path to its URL-safe external id.
// The mapping is reversible: Decode(Encode(p)) == p for every valid path.
func Encode(relPath string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(filepath.ToSlash(relPath)))
}

// Decode maps an external id back to a library-relative path. It fails
// softly with ErrInvalidID rather than returning anything that could be
// mistaken for a usable path.
func Decode(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", ErrInvalidID
	}

	rel := string(raw)
	if rel == "" || strings.ContainsRune(rel, '\x00') {
		return "", ErrInvalidID
	}
	if strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return "", ErrInvalidID
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", ErrInvalidID
		}
	}

	return rel, nil
}

// Resolve decodes id and returns the absolute path of the asset under root,
// along with the decoded relative path. The resolved path is guaranteed to
// stay inside root: anything that normalizes outside it is rejected with
// ErrInvalidID before the filesystem is ever touched.
func Resolve(root, id string) (absPath, relPath string, err error) {
	rel, err := Decode(id)
	if err != nil {
		return "", "", err
	}

	abs := filepath.Join(root, filepath.FromSlash(rel))
	if !Contains(root, abs) {
		return "", "", ErrInvalidID
	}

	return abs, rel, nil
}

// Contains reports whether path lies within root after normalization.
// root is assumed to already be absolute and clean.
func Contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
