package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading `~` with the user's home directory.
// Anything else is returned unchanged.
func ExpandHome(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// ValidateDir resolves d to an absolute path & checks that it is a directory.
// A blank string means the current working directory.
func ValidateDir(d string) (string, error) {
	d, err := ExpandHome(d)
	if err != nil {
		return "", err
	}
	if d == "" {
		d = "."
	}

	d, err = filepath.Abs(d)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(d)
	if err != nil {
		return "", err
	} else if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", d)
	}

	return d, nil
}

// FitWithin scales w x h so that it fits inside maxW x maxH, keeping the aspect ratio.
// Images that already fit are returned as is. Neither dimension is ever 0 unless the input was.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	// Whichever side overshoots the most decides the scale
	if w*maxH > h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}
