package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/buger/goterm"
	"github.com/pkg/term"
)

// Raw input keycodes
const (
	up     byte = 0x41
	down   byte = 0x42
	right  byte = 0x43
	left   byte = 0x44
	escape byte = 0x1B
	enter  byte = 0x0D
	ctrlC  byte = 0x03
)

var arrows = map[byte]bool{
	up:    true,
	down:  true,
	left:  true,
	right: true,
}

var ErrInterrupted = errors.New("interrupted")

// KeyReader returns one key press at a time. Arrow keys come back as the last byte of their escape sequence.
type KeyReader interface {
	ReadKey() (byte, error)
}

// TTY reads raw key presses from a terminal device.
type TTY struct {
	Path string
}

func (t TTY) ReadKey() (byte, error) {
	tty, err := term.Open(t.Path)
	if err != nil {
		return 0, err
	}
	defer tty.Close()

	if err := term.RawMode(tty); err != nil {
		return 0, err
	}
	defer tty.Restore()

	b := make([]byte, 3)
	n, err := tty.Read(b)
	if err != nil {
		return 0, err
	}

	// Arrow keys are prefixed with the ANSI escape code which take up the first two bytes.
	// For example the up arrow key is '<esc>[A' while the right is '<esc>[C'
	if n == 3 {
		if arrows[b[2]] {
			return b[2], nil
		}
		return 0, nil
	}
	return b[0], nil
}

type Menu struct {
	Prompt    string
	CursorPos int
	MenuItems []*MenuItem
	Paged     bool // Paged makes left & right return "prev" & "next" instead of ringing the bell
}

type MenuItem struct {
	Text string
	ID   string
}

func NewMenu(prompt string) *Menu {
	return &Menu{
		Prompt:    prompt,
		MenuItems: make([]*MenuItem, 0),
	}
}

// AddItem will add a new menu option to the menu list
func (m *Menu) AddItem(option string, id string) *Menu {
	m.MenuItems = append(m.MenuItems, &MenuItem{Text: option, ID: id})
	return m
}

// render prints the menu item list.
// Setting redraw to true moves back up over the previous rendering first.
func (m *Menu) render(w io.Writer, redraw bool) {
	if redraw {
		// VT100 cursor up, n-1 lines since the last item doesn't end in a newline
		fmt.Fprintf(w, "\033[%dA", len(m.MenuItems)-1)
	}

	for index, item := range m.MenuItems {
		newline := "\n"
		if index == len(m.MenuItems)-1 {
			newline = ""
		}

		text := item.Text
		cursor := "  "
		if index == m.CursorPos {
			cursor = goterm.Color("> ", goterm.YELLOW)
			text = goterm.Color(text, goterm.YELLOW)
		}

		fmt.Fprintf(w, "\r\033[K%s %s%s", cursor, text, newline)
	}
}

// Display shows the menu & waits for a selection, returning the chosen item's ID.
// Escape returns "". Ctrl-C returns ErrInterrupted.
func (m *Menu) Display(w io.Writer, keys KeyReader) (string, error) {
	if len(m.MenuItems) == 0 {
		return "", nil
	}
	m.CursorPos = max(0, min(m.CursorPos, len(m.MenuItems)-1))

	defer fmt.Fprint(w, "\033[?25h") // Show cursor again

	fmt.Fprintf(w, "%s\n", goterm.Color(goterm.Bold(m.Prompt)+":", goterm.CYAN))
	m.render(w, false)
	fmt.Fprint(w, "\033[?25l")

	for {
		k, err := keys.ReadKey()
		if err != nil {
			return "", err
		}

		switch k {
		case escape:
			fmt.Fprint(w, "\r\n")
			return "", nil
		case ctrlC:
			fmt.Fprint(w, "\r\n")
			return "", ErrInterrupted
		case enter:
			fmt.Fprint(w, "\r\n")
			return m.MenuItems[m.CursorPos].ID, nil
		case up:
			m.CursorPos = (m.CursorPos + len(m.MenuItems) - 1) % len(m.MenuItems)
			m.render(w, true)
		case down:
			m.CursorPos = (m.CursorPos + 1) % len(m.MenuItems)
			m.render(w, true)
		case right:
			if m.Paged {
				fmt.Fprint(w, "\r\n")
				return "next", nil
			}
			bell(w)
		case left:
			if m.Paged {
				fmt.Fprint(w, "\r\n")
				return "prev", nil
			}
			bell(w)
		default:
			bell(w)
		}
	}
}

func bell(w io.Writer) {
	fmt.Fprintf(w, "%c", 7)
}
