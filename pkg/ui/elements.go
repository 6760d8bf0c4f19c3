package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/models"
)

var (
	tileStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(grey).PaddingLeft(1).PaddingRight(1)
	selectedTileStyle = tileStyle.BorderForeground(blue)
	modalStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(1, 2)
	noticeStyle       = modalStyle.BorderForeground(red)
	variantStyle      = lipgloss.NewStyle().Foreground(blue)
	originalStyle     = lipgloss.NewStyle().Foreground(grey)
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Open     key.Binding
	Upload   key.Binding
	Refresh  key.Binding
	Settings key.Binding
	Res250   key.Binding
	Res500   key.Binding
	Res750   key.Binding
	NextRes  key.Binding
	PrevRes  key.Binding
	Delete   key.Binding
	Close    key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Open:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "preview")),
		Upload:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Res250:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", models.R250.String())),
		Res500:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", models.R500.String())),
		Res750:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", models.R750.String())),
		NextRes:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next size")),
		PrevRes:  key.NewBinding(key.WithKeys("shift+tab")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Close:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "close")),
		Confirm:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "upload")),
		Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) gallery() []key.Binding {
	return []key.Binding{k.Open, k.Upload, k.Refresh, k.NextRes, k.Settings, k.Quit}
}

func (k keyMap) preview() []key.Binding {
	return []key.Binding{k.Res250, k.Res500, k.Res750, k.Delete, k.Close}
}

func (k keyMap) confirm() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// resolutionFor maps the direct selection keys to their label
func (k keyMap) resolutionFor(msg tea.KeyMsg) (models.Resolution, bool) {
	switch {
	case key.Matches(msg, k.Res250):
		return models.R250, true
	case key.Matches(msg, k.Res500):
		return models.R500, true
	case key.Matches(msg, k.Res750):
		return models.R750, true
	}
	return "", false
}

// grid lays the images out in tiles & keeps track of which one is selected.
// It knows nothing about the images themselves other than how many there are.
type grid struct {
	cursor int
	offset int // First visible row
	width  int
	height int
}

func (g *grid) columns() int {
	if g.width > wideThreshold {
		return 3
	}
	return 2
}

func (g *grid) rows() int {
	return max(1, (g.height-6)/tileHeight) // Leave room for the title, status & help lines
}

func (g *grid) SetSize(w, h int) {
	g.width, g.height = w, h
	g.scroll()
}

// Move shifts the cursor by d tiles, clamped to the n available.
func (g *grid) Move(d, n int) {
	g.cursor = g.cursor + d
	g.Clamp(n)
}

func (g *grid) Clamp(n int) {
	if g.cursor >= n {
		g.cursor = n - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	g.scroll()
}

func (g *grid) scroll() {
	row := g.cursor / g.columns()
	if row < g.offset {
		g.offset = row
	} else if row >= g.offset+g.rows() {
		g.offset = row - g.rows() + 1
	}
}

func (g *grid) tileWidth() int {
	w := g.width
	if w <= 0 {
		w = 80
	}
	return max(12, w/g.columns()-2) // -2 for the border
}

// View renders the visible rows of tiles.
func (g *grid) View(images []models.Image, r models.Resolution) string {
	if len(images) == 0 {
		return subduedStyle.Render(emptyText)
	}

	cols := g.columns()
	tw := g.tileWidth()
	inner := tw - 2 // horizontal padding

	rows := make([]string, 0, g.rows())
	for row := g.offset; row < g.offset+g.rows(); row++ {
		tiles := make([]string, 0, cols)
		for col := range cols {
			idx := row*cols + col
			if idx >= len(images) {
				break
			}
			img := images[idx]

			style := tileStyle
			if idx == g.cursor {
				style = selectedTileStyle
			}
			tiles = append(tiles, style.Width(tw).Render(tile(img, r, idx, inner)))
		}
		if len(tiles) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func tile(img models.Image, r models.Resolution, idx, width int) string {
	indicator := originalStyle.Render("original")
	if img.HasVariant(r) {
		indicator = variantStyle.Render(r.String())
	}
	title := truncate(fmt.Sprintf("%d. %s", idx+1, img.ID), width)
	return fmt.Sprintf("%s\n%s %s", title, truncate(img.DisplayURI(r), max(1, width-lipgloss.Width(indicator)-1)), indicator)
}

func truncate(s string, w int) string {
	return runewidth.Truncate(s, w, "…")
}

// modal centres a box of content in the given area.
func modal(content string, width, height int, style lipgloss.Style) string {
	box := style.Render(content)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderArt draws img using half block characters: each cell holds two vertically stacked pixels,
// the top one as the foreground and the bottom one as the background.
func renderArt(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	img = io.Fit(img, cols, rows*2)
	b := img.Bounds()

	sb := strings.Builder{}
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteString("\n")
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hex(img, x, y))
			if y+1 < b.Max.Y {
				style = style.Background(hex(img, x, y+1))
			}
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hex(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
