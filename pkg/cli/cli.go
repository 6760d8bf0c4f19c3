// Package cli is the plain terminal front end: raw-mode menus instead of a full screen program.
// It drives the gallery through its synchronous operations.
package cli

import (
	"context"
	"errors"
	"fmt"
	goio "io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/buger/goterm"
	"github.com/inancgumus/screen"

	"github.com/g026r/pocket-gallery/pkg/gallery"
	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/models"
	"github.com/g026r/pocket-gallery/pkg/picker"
)

const pageSize = 10

type Application struct {
	*gallery.Gallery
	Config *io.Config

	keys  KeyReader
	out   goio.Writer
	clear func()
}

func New(g *gallery.Gallery, c *io.Config) *Application {
	return &Application{
		Gallery: g,
		Config:  c,
		keys:    TTY{Path: "/dev/tty"},
		out:     os.Stdout,
		clear:   ClearScreen,
	}
}

// Run loads the collection & shows the main menu until the user quits.
func (a *Application) Run(ctx context.Context) error {
	a.clear()
	fmt.Fprintln(a.out, "Loading...")
	a.Load(ctx)
	if err := a.notices(); err != nil {
		return err
	}

	pos := 0
	for {
		a.clear()
		menu := NewMenu("Pocket Gallery")
		menu.AddItem(fmt.Sprintf("Browse images (%d)", len(a.Images())), "browse")
		menu.AddItem("Upload image", "upload")
		menu.AddItem("Refresh", "refresh")
		menu.AddItem(fmt.Sprintf("Resolution: %s", a.Resolution()), "res")
		menu.AddItem("Save settings", "save")
		menu.AddItem("Quit", "")
		menu.CursorPos = pos

		choice, err := menu.Display(a.out, a.keys)
		if err != nil {
			return err
		}
		pos = menu.CursorPos

		switch choice {
		case "browse":
			err = a.browse(ctx)
		case "upload":
			err = a.upload(ctx)
		case "refresh":
			a.clear()
			fmt.Fprintln(a.out, "Loading...")
			a.Load(ctx)
			err = a.notices()
		case "res":
			err = a.resolutionMenu()
		case "save":
			err = a.save()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (a *Application) browse(ctx context.Context) error {
	p := pager{}
	for {
		images := a.Images()
		if len(images) == 0 {
			a.clear()
			fmt.Fprintln(a.out, "No images available")
			return a.anyKey()
		}

		labels := make([]string, len(images))
		for i, img := range images {
			labels[i] = fmt.Sprintf("%s  %s", img.ID, a.DisplayURI(img))
		}
		idx, err := p.show(a, fmt.Sprintf("Images at %s", a.Resolution()), labels)
		if err != nil || idx < 0 {
			return err
		}
		if err := a.preview(ctx, idx); err != nil {
			return err
		}
	}
}

func (a *Application) preview(ctx context.Context, idx int) error {
	if !a.Preview(idx) {
		return nil
	}
	defer a.ClosePreview()

	pos := 0
	for a.PreviewVisible() {
		img, _ := a.Selected()

		a.clear()
		fmt.Fprintf(a.out, "%s\n\r", goterm.Color(goterm.Bold(fmt.Sprintf("Image %s", img.ID)), goterm.CYAN))
		fmt.Fprintf(a.out, "%s (%s)\n\r", a.DisplayURI(img), indicator(img, a.Resolution()))
		fmt.Fprintf(a.out, "%s\n\n\r", variants(img))

		menu := NewMenu("Preview")
		menu.AddItem("Delete", "delete")
		menu.AddItem(fmt.Sprintf("Resolution: %s", a.Resolution()), "res")
		menu.AddItem("Back", "")
		menu.CursorPos = pos

		choice, err := menu.Display(a.out, a.keys)
		if err != nil {
			return err
		}
		pos = menu.CursorPos

		switch choice {
		case "delete":
			fmt.Fprintln(a.out, "Deleting...")
			a.DeletePreviewed(ctx)
			if err := a.notices(); err != nil {
				return err
			}
		case "res":
			a.setResolution(a.Resolution().Next())
		default:
			return nil
		}
	}
	return nil
}

func (a *Application) upload(ctx context.Context) error {
	files, err := picker.List(a.Config.Picker.Dir)
	if err != nil {
		log.Printf("list %s: %v", a.Config.Picker.Dir, err)
		if errors.Is(err, picker.ErrPermissionDenied) {
			a.Notify(gallery.NoticePermission)
		} else {
			a.Notify(gallery.NoticePickFailed)
		}
		return a.notices()
	}
	if len(files) == 0 {
		a.clear()
		fmt.Fprintf(a.out, "No images found in %s\n", a.Config.Picker.Dir)
		return a.anyKey()
	}

	labels := make([]string, len(files))
	for i, f := range files {
		labels[i] = filepath.Base(f)
	}
	p := pager{}
	idx, err := p.show(a, "Upload", labels)
	if err != nil || idx < 0 {
		return err
	}

	a.Stage(files[idx])
	path, _ := a.Staged()
	a.clear()
	fmt.Fprintf(a.out, "%s\n\n\r", path)
	menu := NewMenu("Upload this image?")
	menu.AddItem("Upload", "yes")
	menu.AddItem("Cancel", "")

	choice, err := menu.Display(a.out, a.keys)
	if err != nil || choice != "yes" {
		a.CancelUpload()
		return err
	}

	fmt.Fprintln(a.out, "Uploading...")
	a.ConfirmUpload(ctx)
	return a.notices()
}

func (a *Application) resolutionMenu() error {
	a.clear()
	menu := NewMenu("Resolution")
	for i, r := range models.Resolutions {
		menu.AddItem(r.String(), r.String())
		if r == a.Resolution() {
			menu.CursorPos = i
		}
	}
	menu.AddItem("Back", "")

	choice, err := menu.Display(a.out, a.keys)
	if err != nil || choice == "" {
		return err
	}
	r, err := models.ParseResolution(choice)
	if err != nil {
		return err
	}
	a.setResolution(r)
	return nil
}

// setResolution switches the label. With a preview open it shows the loading indicator for the configured delay.
func (a *Application) setResolution(r models.Resolution) {
	if r == a.Resolution() {
		return
	}
	preview := a.SetResolution(r)
	a.Config.UI.Resolution = a.Resolution()
	if preview && a.Config.UI.PreviewDelay > 0 {
		fmt.Fprintln(a.out, "Loading...")
		time.Sleep(a.Config.UI.PreviewDelay)
	}
}

func (a *Application) save() error {
	a.clear()
	if err := a.Config.SaveConfig(); err != nil {
		log.Printf("save config: %v", err)
		fmt.Fprintln(a.out, goterm.Color("Could not save the settings", goterm.RED))
	} else {
		fmt.Fprintln(a.out, "Settings saved")
	}
	return a.anyKey()
}

// notices prints any queued notices & waits for a key press. It does nothing if there aren't any.
func (a *Application) notices() error {
	n := a.Notices()
	if len(n) == 0 {
		return nil
	}

	for _, x := range n {
		fmt.Fprintf(a.out, "%s\n\r%s\n\n\r", goterm.Color(goterm.Bold(x.Title)+":", goterm.RED), x.Message)
	}
	return a.anyKey()
}

func (a *Application) anyKey() error {
	fmt.Fprintln(a.out, "Press any key to continue")
	_, err := a.keys.ReadKey()
	return err
}

// pager fakes multipage menus on top of Menu. It remembers the page & cursor between calls.
type pager struct {
	start int
	pos   int
}

// show returns the index of the chosen label, or -1 if the user backed out.
func (p *pager) show(a *Application, title string, labels []string) (int, error) {
	for {
		if p.start >= len(labels) {
			p.start = max(0, (len(labels)-1)/pageSize*pageSize) // The last page went away
		}
		end := min(p.start+pageSize, len(labels))

		a.clear()
		menu := NewMenu(fmt.Sprintf("%s [%d-%d of %d]", title, p.start+1, end, len(labels)))
		menu.Paged = true
		for i := p.start; i < end; i++ {
			menu.AddItem(fmt.Sprintf("%d. %s", i+1, labels[i]), strconv.Itoa(i))
		}
		menu.AddItem("Back", "")
		menu.CursorPos = p.pos

		choice, err := menu.Display(a.out, a.keys)
		if err != nil {
			return -1, err
		}
		p.pos = menu.CursorPos

		switch choice {
		case "prev":
			if p.start == 0 {
				bell(a.out) // We're at the first page
			} else {
				p.start = max(0, p.start-pageSize)
				p.pos = 0
			}
		case "next":
			if end >= len(labels) {
				bell(a.out) // We're at the last page
			} else {
				p.start = end
				p.pos = 0
			}
		case "":
			return -1, nil
		default:
			return strconv.Atoi(choice)
		}
	}
}

func indicator(img models.Image, r models.Resolution) string {
	if img.HasVariant(r) {
		return r.String()
	}
	return "original"
}

func variants(img models.Image) string {
	v := make([]string, 0, len(models.Resolutions))
	for _, r := range models.Resolutions {
		if img.HasVariant(r) {
			v = append(v, r.String())
		}
	}
	if len(v) == 0 {
		return "No variants"
	}
	return fmt.Sprintf("Variants: %s", strings.Join(v, ", "))
}

// ClearScreen clears the screen & moves the cursor back to the top left
func ClearScreen() {
	screen.Clear()
	screen.MoveTopLeft()
}
