package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	t.Parallel()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cases := []struct {
		in       string
		expected string
	}{
		{"~", home},
		{"~/Pictures", filepath.Join(home, "Pictures")},
		{"  ~/Pictures  ", filepath.Join(home, "Pictures")},
		{"/tmp/~", "/tmp/~"},
		{"~other/Pictures", "~other/Pictures"}, // not ours to resolve
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if s, err := ExpandHome(tc.in); err != nil {
				t.Errorf("err: %v", err)
			} else if s != tc.expected {
				t.Errorf("Expected %q got %q", tc.expected, s)
			}
		})
	}
}

func TestValidateDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	d, err := ValidateDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if d != dir {
		t.Errorf("Expected %q got %q", dir, d)
	}

	f := filepath.Join(dir, "file.png")
	if err := os.WriteFile(f, []byte{0}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateDir(f); err == nil {
		t.Error("Expected error for a file but got nil")
	}
	if _, err := ValidateDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for a missing dir but got nil")
	}
	if d, err := ValidateDir(""); err != nil || !filepath.IsAbs(d) {
		t.Errorf("Expected the working dir; got %q, %v", d, err)
	}
}

func TestFitWithin(t *testing.T) {
	t.Parallel()
	cases := []struct {
		w, h, maxW, maxH int
		ew, eh           int
	}{
		{100, 50, 200, 200, 100, 50},    // already fits
		{1000, 500, 250, 250, 250, 125}, // wide
		{500, 1000, 250, 250, 125, 250}, // tall
		{1000, 1000, 250, 100, 100, 100},
		{4000, 1, 100, 100, 100, 1}, // never rounds to 0
		{0, 10, 100, 100, 0, 0},
		{10, 10, 0, 100, 0, 0},
	}

	for _, tc := range cases {
		w, h := FitWithin(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.ew || h != tc.eh {
			t.Errorf("%dx%d in %dx%d: Expected %dx%d got %dx%d", tc.w, tc.h, tc.maxW, tc.maxH, tc.ew, tc.eh, w, h)
		}
	}
}
