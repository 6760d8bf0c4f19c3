package ui

import (
	"context"
	"errors"
	"fmt"
	goio "io"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/g026r/pocket-gallery/pkg/api"
	"github.com/g026r/pocket-gallery/pkg/gallery"
	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/models"
	"github.com/g026r/pocket-gallery/pkg/picker"
)

type errMsg struct {
	err   error
	fatal bool
}

// initDoneMsg signals the backend client is ready.
type initDoneMsg struct {
	remote  api.Remote
	fetcher api.Fetcher
}

type loadedMsg struct {
	images []models.Image
	err    error
}

type uploadedMsg struct {
	ok  bool
	err error
}

type deletedMsg struct {
	err error
}

// artMsg carries a rendered preview. uri is what was fetched, so stale results can be dropped.
type artMsg struct {
	uri string
	art string
	err error
}

// flashDoneMsg ends the loading indicator shown after switching resolution in the preview.
// seq makes sure only the most recent switch can end it.
type flashDoneMsg struct {
	seq int
}

type savedMsg struct{}

var noticeSaved = gallery.Notice{Title: "Settings", Message: "Settings saved"}

type Option func(*Model)

// WithRemote skips building the HTTP client from the config & uses the supplied collaborators instead.
// fetcher may be nil, in which case previews are never rendered.
func WithRemote(r api.Remote, f api.Fetcher) Option {
	return func(m *Model) {
		m.remote = r
		m.fetcher = f
	}
}

type Model struct {
	*io.Config                  // io.Config is a pointer as the configDelegate needs to read it too
	stack                       // stack contains the stack of screens
	gallery    *gallery.Gallery // gallery is nil until initialization is done
	remote     api.Remote
	fetcher    api.Fetcher
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	grid       grid
	picker     picker.Model
	settings   list.Model
	notices    []gallery.Notice // notices waiting to be dismissed, oldest first
	err        error            // err is used to print out an error if the program has to exit early
	width      int
	height     int

	art        string // art is the rendered preview for artURI
	artURI     string
	artLoading bool
	artErr     bool
	flash      bool
	flashSeq   int
}

func NewModel(c io.Config, opts ...Option) *Model {
	config := c

	m := &Model{
		Config:   &config,
		stack:    stack{[]screen{Initializing}},
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(itemStyle.Foreground(blue))),
		help:     help.New(),
		keys:     newKeyMap(),
		settings: *NewSettingsMenu(&config),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initSystem)
}

// initSystem builds the backend client, unless one was supplied
func (m *Model) initSystem() tea.Msg {
	if m.remote != nil {
		return initDoneMsg{m.remote, m.fetcher}
	}

	c, err := api.NewClient(m.Server.URL, m.Server.Timeout)
	if err != nil {
		return errMsg{err, true}
	}
	return initDoneMsg{c, c}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Make sure this always quits
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if len(m.notices) > 0 {
			m.notices = m.notices[1:] // Any key dismisses the oldest notice
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetSize(msg.Width, msg.Height)
		m.settings.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		if m.Peek() == FileSelect {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil // Nothing is in flight. Let the spinner stop until the next call restarts it.
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case errMsg:
		m.err = msg.err
		if msg.fatal {
			m.Push(FatalError)
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit) // Need to exit alt screen first or the error message doesn't appear for long enough
		}
		log.Printf("error: %v", msg.err)
		m.notices = append(m.notices, gallery.Notice{Title: "Error", Message: msg.err.Error()})
		return m, nil
	case initDoneMsg:
		m.remote, m.fetcher = msg.remote, msg.fetcher
		m.gallery = gallery.New(m.remote, gallery.WithResolution(m.UI.Resolution))
		m.Clear()
		m.Push(Gallery) // Finished initializing. Replace the stack with a new one containing only the gallery
		return m, m.load()
	case loadedMsg:
		m.gallery.FinishLoad(msg.images, msg.err)
		m.grid.Clamp(len(m.gallery.Images()))
		return m.sync(nil)
	case uploadedMsg:
		var cmd tea.Cmd
		if m.gallery.FinishUpload(msg.ok, msg.err) {
			cmd = m.load()
		}
		return m.sync(cmd)
	case deletedMsg:
		var cmd tea.Cmd
		if m.gallery.FinishDelete(msg.err) {
			cmd = m.load()
		}
		return m.sync(cmd)
	case artMsg:
		if msg.uri != m.artURI {
			return m, nil // Resolution changed while this was loading
		}
		m.artLoading = false
		m.art = msg.art
		m.artErr = msg.err != nil
		if msg.err != nil {
			log.Printf("preview %s: %v", msg.uri, msg.err)
		}
		return m, nil
	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = false
		}
		return m, nil
	case savedMsg:
		m.notices = append(m.notices, noticeSaved)
		return m, nil
	case picker.PickedMsg:
		if m.Peek() == FileSelect {
			m.Pop()
		}
		m.gallery.Stage(msg.Path)
		return m.sync(m.stageArt(msg.Path))
	case picker.CancelledMsg:
		if m.Peek() == FileSelect {
			m.Pop()
		}
		return m, nil
	}

	if m.gallery == nil {
		return m, nil // Still initializing
	}

	switch m.Peek() {
	case Gallery:
		return m.galleryHandler(msg)
	case Preview:
		return m.previewHandler(msg)
	case UploadConfirm:
		return m.confirmHandler(msg)
	case FileSelect:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case Settings:
		return m.settingsHandler(msg)
	default:
	}

	return m, nil
}

// sync brings the screen stack in line with the gallery's overlays & collects any new notices.
func (m *Model) sync(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.notices = append(m.notices, m.gallery.Notices()...)

	if m.Peek() == UploadConfirm && !m.gallery.UploadConfirmVisible() {
		m.Pop()
	}
	if m.Peek() == Preview && !m.gallery.PreviewVisible() {
		m.Pop()
	}
	if m.gallery.UploadConfirmVisible() && m.Peek() != UploadConfirm {
		m.Push(UploadConfirm)
	}

	return m, cmd
}

func (m *Model) busy() bool {
	return m.Peek() == Initializing || m.flash || m.artLoading || (m.gallery != nil && m.gallery.Loading())
}

func (m *Model) galleryHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := len(m.gallery.Images())
	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(k, m.keys.Left):
		m.grid.Move(-1, n)
	case key.Matches(k, m.keys.Right):
		m.grid.Move(1, n)
	case key.Matches(k, m.keys.Up):
		m.grid.Move(-m.grid.columns(), n)
	case key.Matches(k, m.keys.Down):
		m.grid.Move(m.grid.columns(), n)
	case key.Matches(k, m.keys.Open):
		if m.gallery.Preview(m.grid.cursor) {
			m.Push(Preview)
			return m, m.fetchArt()
		}
	case key.Matches(k, m.keys.Upload):
		return m.openPicker()
	case key.Matches(k, m.keys.Refresh):
		return m, m.load()
	case key.Matches(k, m.keys.Settings):
		m.settings.ResetSelected()
		m.Push(Settings)
	case key.Matches(k, m.keys.NextRes):
		return m, m.setResolution(m.gallery.Resolution().Next())
	case key.Matches(k, m.keys.PrevRes):
		return m, m.setResolution(m.gallery.Resolution().Prev())
	default:
		if r, ok := m.keys.resolutionFor(k); ok {
			return m, m.setResolution(r)
		}
	}

	return m, nil
}

func (m *Model) previewHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Close):
		m.gallery.ClosePreview()
		return m.sync(nil)
	case key.Matches(k, m.keys.Delete):
		if m.gallery.Loading() {
			return m, nil // One round trip at a time from here
		}
		id, ok := m.gallery.BeginDelete()
		if !ok {
			return m, nil
		}
		remote := m.remote
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return deletedMsg{remote.Delete(context.Background(), id)}
		})
	case key.Matches(k, m.keys.NextRes):
		return m, m.setResolution(m.gallery.Resolution().Next())
	case key.Matches(k, m.keys.PrevRes):
		return m, m.setResolution(m.gallery.Resolution().Prev())
	default:
		if r, ok := m.keys.resolutionFor(k); ok {
			return m, m.setResolution(r)
		}
	}

	return m, nil
}

func (m *Model) confirmHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok || m.gallery.Loading() {
		return m, nil // Keys are ignored while the upload is in flight
	}

	switch {
	case key.Matches(k, m.keys.Confirm):
		path, ok := m.gallery.BeginUpload()
		if !ok {
			return m.sync(nil)
		}
		remote := m.remote
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			stored, err := remote.Upload(context.Background(), path)
			return uploadedMsg{stored, err}
		})
	case key.Matches(k, m.keys.Cancel):
		m.gallery.CancelUpload()
		return m.sync(nil)
	}

	return m, nil
}

func (m *Model) settingsHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", " ":
			if i, ok := m.settings.SelectedItem().(menuItem); ok {
				return m.configChange(i.key)
			}
		case "esc":
			m.Pop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(msg)
	return m, cmd
}

// configChange handles item selection on the settings menu
func (m *Model) configChange(k menuKey) (tea.Model, tea.Cmd) {
	switch k {
	case cfgResolution:
		return m, m.setResolution(m.gallery.Resolution().Next())
	case cfgPreviews:
		m.UI.RenderPreviews = !m.UI.RenderPreviews
	case cfgSave:
		c := *m.Config
		return m, func() tea.Msg {
			if err := c.SaveConfig(); err != nil {
				return errMsg{fmt.Errorf("could not save the settings: %w", err), false}
			}
			return savedMsg{}
		}
	case back:
		m.Pop()
	}

	return m, nil
}

// load marks a list request as in flight & returns the command that performs it.
func (m *Model) load() tea.Cmd {
	m.gallery.BeginLoad()
	remote := m.remote
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		images, err := remote.List(context.Background())
		return loadedMsg{images, err}
	})
}

// setResolution switches the displayed variant. With the preview open it re-fetches the preview &
// shows the loading indicator for the configured delay.
func (m *Model) setResolution(r models.Resolution) tea.Cmd {
	if r == m.gallery.Resolution() {
		return nil
	}
	preview := m.gallery.SetResolution(r)
	m.UI.Resolution = m.gallery.Resolution()
	if !preview {
		return nil
	}

	cmds := []tea.Cmd{m.fetchArt()}
	if m.UI.PreviewDelay > 0 {
		m.flash = true
		m.flashSeq++
		seq := m.flashSeq
		cmds = append(cmds, m.spinner.Tick, tea.Tick(m.UI.PreviewDelay, func(time.Time) tea.Msg {
			return flashDoneMsg{seq}
		}))
	}
	return tea.Batch(cmds...)
}

// fetchArt resets the preview for the selected image & starts rendering it, if there's anything to render with.
func (m *Model) fetchArt() tea.Cmd {
	img, ok := m.gallery.Selected()
	if !ok {
		return nil
	}
	uri := m.gallery.DisplayURI(img)
	m.artURI = uri
	m.art = ""
	m.artErr = false
	m.artLoading = false
	if m.fetcher == nil || !m.UI.RenderPreviews || uri == "" {
		return nil
	}

	m.artLoading = true
	fetcher := m.fetcher
	cols, rows := m.artSize()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		rc, err := fetcher.Fetch(context.Background(), uri)
		if err != nil {
			return artMsg{uri: uri, err: err}
		}
		defer rc.Close()
		return decodeArt(uri, rc, cols, rows)
	})
}

// stageArt renders the local file waiting for upload confirmation.
func (m *Model) stageArt(path string) tea.Cmd {
	m.artURI = path
	m.art = ""
	m.artErr = false
	m.artLoading = false
	if !m.UI.RenderPreviews || path == "" {
		return nil
	}

	m.artLoading = true
	cols, rows := m.artSize()
	cols, rows = max(10, cols/2), max(5, rows/2) // Has to fit inside the modal
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return artMsg{uri: path, err: err}
		}
		defer f.Close()
		return decodeArt(path, f, cols, rows)
	})
}

func decodeArt(uri string, r goio.Reader, cols, rows int) artMsg {
	img, err := io.DecodeImage(r)
	if err != nil {
		return artMsg{uri: uri, err: err}
	}
	return artMsg{uri: uri, art: renderArt(img, cols, rows)}
}

func (m *Model) artSize() (int, int) {
	w, h := m.width, m.height
	if w <= 0 || h <= 0 {
		w, h = 80, 24
	}
	return max(10, w-8), max(5, h-10)
}

func (m *Model) openPicker() (tea.Model, tea.Cmd) {
	dir := m.Picker.Dir
	if err := picker.CheckPermission(dir); err != nil {
		log.Printf("open picker: %v", err)
		if errors.Is(err, picker.ErrPermissionDenied) {
			m.gallery.Notify(gallery.NoticePermission)
		} else {
			m.gallery.Notify(gallery.NoticePickFailed)
		}
		return m.sync(nil)
	}

	m.picker = picker.New(dir).WithHeight(m.height - 6)
	m.Push(FileSelect)
	return m, m.picker.Init()
}

// Err is the error that ended the program early, if any.
func (m *Model) Err() error {
	if m.Peek() != FatalError {
		return nil
	}
	return m.err
}

func (m *Model) View() (s string) {
	switch m.Peek() {
	case Initializing:
		s = fmt.Sprintf("%s Connecting to %s. Please wait.", m.spinner.View(), m.Server.URL)
	case FatalError:
		s = errorStyle.Render(fmt.Sprintf("FATAL ERROR: %v\n", m.err))
	case Gallery:
		s = m.galleryView()
	case Preview:
		s = m.previewView()
	case UploadConfirm:
		s = m.confirmView()
	case FileSelect:
		s = fmt.Sprintf("  %s\n\n%s\n%s", titleStyle.Render("Gallery > Upload"), m.picker.View(),
			helpStyle.Render("enter select • h back • esc cancel"))
	case Settings:
		s = m.settings.View()
	default:
		panic("Panic! At the View() call")
	}

	if len(m.notices) > 0 {
		n := m.notices[0]
		s = fmt.Sprintf("%s\n\n%s", s, modal(fmt.Sprintf("%s\n\n%s\n\n%s", n.Title, n.Message, subduedStyle.Render(anyKeyText)), 0, 0, noticeStyle))
	}

	return
}

func (m *Model) status() string {
	s := fmt.Sprintf("Resolution: %s", m.gallery.Resolution())
	if m.gallery.Loading() {
		s = fmt.Sprintf("%s  %s", s, m.spinner.View())
	}
	return subduedStyle.Render(s)
}

func (m *Model) galleryView() string {
	s := fmt.Sprintf("  %s\n%s\n\n", titleStyle.Render("Pocket Gallery"), m.status())

	images := m.gallery.Images()
	if len(images) == 0 && m.gallery.Loading() {
		s = s + itemStyle.Render(loadingText)
	} else {
		s = s + m.grid.View(images, m.gallery.Resolution())
	}

	return fmt.Sprintf("%s\n\n%s", s, helpStyle.Render(m.help.ShortHelpView(m.keys.gallery())))
}

func (m *Model) previewView() string {
	img, _ := m.gallery.Selected()
	s := fmt.Sprintf("  %s\n%s\n\n", titleStyle.Render(fmt.Sprintf("Gallery > %s", img.ID)), m.status())
	s = s + itemStyle.Render(m.gallery.DisplayURI(img)) + "\n\n"

	switch {
	case m.flash:
		s = s + itemStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), loadingText))
	case m.artLoading:
		s = s + itemStyle.Render(loadingText)
	case m.artErr:
		s = s + errorStyle.Render(errorText)
	case m.art != "":
		s = s + itemStyle.Render(m.art)
	default:
	}

	return fmt.Sprintf("%s\n\n%s", s, helpStyle.Render(m.help.ShortHelpView(m.keys.preview())))
}

func (m *Model) confirmView() string {
	path, _ := m.gallery.Staged()
	body := fmt.Sprintf("Upload this image?\n\n%s", selectedItemStyle.Render(path))
	switch {
	case m.artURI != path:
	case m.artLoading:
		body = fmt.Sprintf("%s\n\n%s", body, loadingText)
	case m.artErr:
		body = fmt.Sprintf("%s\n\n%s", body, errorStyle.Render(errorText))
	case m.art != "":
		body = fmt.Sprintf("%s\n\n%s", body, m.art)
	default:
	}
	if m.gallery.Loading() {
		body = fmt.Sprintf("%s\n\n%s Uploading...", body, m.spinner.View())
	} else {
		body = fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(m.keys.confirm()))
	}
	return modal(body, m.width, m.height, modalStyle)
}
