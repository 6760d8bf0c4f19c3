// Package picker chooses a single local image file to upload.
package picker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/util"
)

var ErrPermissionDenied = errors.New("permission denied")

// PickedMsg is sent when the user chose a file.
type PickedMsg struct {
	Path string
}

// CancelledMsg is sent when the user backed out without choosing anything.
type CancelledMsg struct{}

// CheckPermission makes sure dir can be listed. Permission problems come back as ErrPermissionDenied,
// anything else (missing, not a directory) as is.
func CheckPermission(dir string) error {
	d, err := util.ValidateDir(dir)
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s: %w", dir, ErrPermissionDenied)
	} else if err != nil {
		return err
	}

	f, err := os.Open(d)
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s: %w", d, ErrPermissionDenied)
	} else if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.ReadDir(1); errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s: %w", d, ErrPermissionDenied)
	}
	return nil
}

// List returns the image files directly inside dir, sorted by name. Used by the plain terminal front end.
func List(dir string) ([]string, error) {
	if err := CheckPermission(dir); err != nil {
		return nil, err
	}
	d, err := util.ValidateDir(dir)
	if err != nil {
		return nil, err
	}

	de, err := os.ReadDir(d)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(de))
	for _, e := range de {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !io.IsImage(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(d, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

var (
	blue = lipgloss.AdaptiveColor{Light: "#006699", Dark: "#00ccff"}
	grey = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}
)

// Model wraps the bubbles file picker so it only ever returns one image, or a cancellation.
type Model struct {
	fp     filepicker.Model
	cancel key.Binding
}

// New builds a picker rooted at dir. Call CheckPermission first; the file picker itself swallows read errors.
func New(dir string) Model {
	fp := filepicker.New()
	if d, err := util.ValidateDir(dir); err == nil {
		fp.CurrentDirectory = d
	}
	fp.AllowedTypes = allowedTypes()
	fp.AutoHeight = true
	fp.ShowPermissions = false
	fp.Styles.Cursor = fp.Styles.Cursor.Foreground(blue)
	fp.Styles.Selected = fp.Styles.Selected.Foreground(blue)
	fp.Styles.DisabledFile = fp.Styles.DisabledFile.Foreground(grey)
	// esc is ours
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "back"))

	return Model{
		fp:     fp,
		cancel: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "cancel")),
	}
}

// allowedTypes is io.Extensions in both cases. The file picker matches suffixes case-sensitively,
// and cameras like naming files IMG_0001.JPG.
func allowedTypes() []string {
	types := slices.Clone(io.Extensions)
	for _, ext := range io.Extensions {
		types = append(types, strings.ToUpper(ext))
	}
	return types
}

func (m Model) Init() tea.Cmd {
	return m.fp.Init()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.cancel) {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)

	if ok, path := m.fp.DidSelectFile(msg); ok {
		return m, func() tea.Msg { return PickedMsg{Path: path} }
	}
	// Mixed case extensions like .Jpg still count
	if ok, path := m.fp.DidSelectDisabledFile(msg); ok && io.IsImage(path) {
		return m, func() tea.Msg { return PickedMsg{Path: path} }
	}
	return m, cmd
}

func (m Model) View() string {
	return m.fp.View()
}

// WithHeight sets the number of rows shown until the next window resize.
func (m Model) WithHeight(h int) Model {
	if h > 0 {
		m.fp.Height = h
	}
	return m
}

// Dir is the directory currently being shown.
func (m Model) Dir() string {
	return m.fp.CurrentDirectory
}
