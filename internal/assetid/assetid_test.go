package assetid

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	paths := []string{
		"movie.mp4",
		"Show/S01E01.mkv",
		"deep/nested/dir/clip.webm",
		"name with spaces.mov",
		"unicode/日本語.mp4",
		"punct!@#$%^&()[]{}.avi",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			id := Encode(p)
			got, err := Decode(id)
			if err != nil {
				t.Fatalf("Decode(Encode(%q)) error: %v", p, err)
			}
			if got != p {
				t.Errorf("Decode(Encode(%q)) = %q", p, got)
			}
		})
	}
}

func TestEncodeIsURLSafe(t *testing.T) {
	id := Encode("Show/S01E01 [1080p] + extras.mkv")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			t.Errorf("id contains non-URL-safe rune %q: %s", r, id)
		}
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"NotBase64", "!!!not-base64!!!"},
		{"Empty", ""},
		{"EmptyPayload", Encode("")},
		{"AbsolutePath", Encode("/etc/passwd")},
		{"Traversal", Encode("../outside.mp4")},
		{"NestedTraversal", Encode("Show/../../outside.mp4")},
		{"NullByte", base64.RawURLEncoding.EncodeToString([]byte("a\x00b"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.id); !errors.Is(err, ErrInvalidID) {
				t.Errorf("Decode(%q) err = %v, want ErrInvalidID", tt.id, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()

	abs, rel, err := Resolve(root, Encode("Show/S01E01.mkv"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if rel != "Show/S01E01.mkv" {
		t.Errorf("rel = %q", rel)
	}
	want := filepath.Join(root, "Show", "S01E01.mkv")
	if abs != want {
		t.Errorf("abs = %q, want %q", abs, want)
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	root := t.TempDir()

	ids := []string{
		Encode("../sibling/file.mp4"),
		Encode("a/../../file.mp4"),
		Encode("/abs.mp4"),
		"%%%",
	}

	for _, id := range ids {
		if abs, _, err := Resolve(root, id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Resolve(%q) = (%q, %v), want ErrInvalidID", id, abs, err)
		}
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want bool
	}{
		{"Inside", "/lib", "/lib/a.mp4", true},
		{"Nested", "/lib", "/lib/x/y/z.mp4", true},
		{"Root itself", "/lib", "/lib", true},
		{"Sibling prefix", "/lib", "/library/a.mp4", false},
		{"Parent", "/lib", "/a.mp4", false},
		{"Traversal", "/lib", "/lib/../etc/passwd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.root, tt.path); got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
			}
		})
	}
}
