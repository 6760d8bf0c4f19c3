package picker

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCheckPermission(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := CheckPermission(dir); err != nil {
		t.Errorf("Expected nil got %v", err)
	}

	if err := CheckPermission(filepath.Join(dir, "missing")); err == nil || errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Expected a not-exist error got %v", err)
	}

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("can't revoke read permission here")
	}
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	if err := CheckPermission(locked); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied got %v", err)
	}
	if _, err := List(locked); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied got %v", err)
	}
}

func TestList(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, f := range []string{"b.png", "a.JPG", "notes.txt", ".hidden.png", "c.tiff"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte{0}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{filepath.Join(dir, "a.JPG"), filepath.Join(dir, "b.png"), filepath.Join(dir, "c.tiff")}
	if !slices.Equal(files, expected) {
		t.Errorf("Expected %v got %v", expected, files)
	}
}

func TestModel_Cancel(t *testing.T) {
	t.Parallel()
	sut := New(t.TempDir())

	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyRunes, Runes: []rune{'q'}}} {
		_, cmd := sut.Update(k)
		if cmd == nil {
			t.Fatalf("%s: Expected a command got nil", k)
		}
		if _, ok := cmd().(CancelledMsg); !ok {
			t.Errorf("%s: Expected CancelledMsg", k)
		}
	}
}

// pick opens a picker on a dir holding only name & selects the first entry.
func pick(t *testing.T, name string) tea.Msg {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	sut := New(dir)
	sut, _ = sut.Update(sut.Init()()) // Directory listing
	_, cmd := sut.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestModel_Pick(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		allowed bool
	}{
		{"img_0001.jpg", true},
		{"IMG_0001.JPG", true},
		{"scan.TIFF", true},
		{"photo.Png", true},
		{"notes.txt", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			msg := pick(t, tc.name)
			p, ok := msg.(PickedMsg)
			if ok != tc.allowed {
				t.Fatalf("Expected picked %t got %T", tc.allowed, msg)
			}
			if ok && filepath.Base(p.Path) != tc.name {
				t.Errorf("Expected %q got %q", tc.name, filepath.Base(p.Path))
			}
		})
	}
}

func TestModel_Dir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if sut := New(dir); sut.Dir() != dir {
		t.Errorf("Expected %q got %q", dir, sut.Dir())
	}
	// An unusable dir leaves the file picker's own default alone
	if sut := New(filepath.Join(dir, "missing")); sut.Dir() == filepath.Join(dir, "missing") {
		t.Error("Expected the missing dir to be ignored")
	}
}
