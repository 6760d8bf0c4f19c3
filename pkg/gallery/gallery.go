// Package gallery holds the state behind the gallery screen: the fetched images, the selected
// resolution, which overlay is open, and the notices waiting to be shown.
//
// A Gallery is not safe for concurrent use. Front ends mutate it from a single goroutine:
// either by calling the composite operations (Load, ConfirmUpload, DeletePreviewed) directly,
// or by calling a Begin* method, running the remote call elsewhere, and handing the outcome back
// to the matching Finish* method.
package gallery

import (
	"context"
	"log"
	"slices"

	"github.com/g026r/pocket-gallery/pkg/api"
	"github.com/g026r/pocket-gallery/pkg/models"
)

// Notice is a user-facing message. They carry no structured detail.
type Notice struct {
	Title   string
	Message string
}

var (
	NoticeLoadFailed   = Notice{"Error", "Could not load the images"}
	NoticeUploadFailed = Notice{"Error", "Could not upload the image"}
	NoticeDeleteFailed = Notice{"Error", "Could not delete the image"}
	NoticePickFailed   = Notice{"Error", "Could not select the image"}
	NoticePermission   = Notice{"Permission denied", "Access to the image library is needed to pick a photo"}
)

type Gallery struct {
	remote     api.Remote
	images     []models.Image
	resolution models.Resolution
	loading    bool
	pending    int // remote round trips in flight; loading stays true while this is above 0

	preview  bool
	selected *models.Image

	uploadConfirm bool
	staged        string

	notices []Notice
}

type Option func(*Gallery)

// WithResolution sets the starting resolution. Labels outside models.Resolutions are ignored.
func WithResolution(r models.Resolution) Option {
	return func(g *Gallery) {
		if slices.Contains(models.Resolutions, r) {
			g.resolution = r
		}
	}
}

func New(remote api.Remote, opts ...Option) *Gallery {
	g := &Gallery{
		remote:     remote,
		resolution: models.DefaultResolution,
		loading:    true, // Nothing has been fetched yet; the first Load is expected right away
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gallery) Images() []models.Image {
	return g.images
}

func (g *Gallery) Loading() bool {
	return g.loading
}

func (g *Gallery) Resolution() models.Resolution {
	return g.resolution
}

// SetResolution re-keys the display. It never touches the remote.
// It returns true if the preview is open, in which case the caller may show a short loading
// indicator while the new variant is displayed.
func (g *Gallery) SetResolution(r models.Resolution) bool {
	if !slices.Contains(models.Resolutions, r) {
		return false
	}
	g.resolution = r
	return g.preview && g.selected != nil
}

// DisplayURI resolves an image at the active resolution.
func (g *Gallery) DisplayURI(img models.Image) string {
	return img.DisplayURI(g.resolution)
}

// Notices drains the queued notices, oldest first.
func (g *Gallery) Notices() []Notice {
	n := g.notices
	g.notices = nil
	return n
}

// Notify queues a notice. Used by front ends for errors that happen outside the gallery, like the picker.
func (g *Gallery) Notify(n Notice) {
	g.notices = append(g.notices, n)
}

func (g *Gallery) begin() {
	g.pending++
	g.loading = true
}

func (g *Gallery) end() {
	if g.pending > 0 {
		g.pending--
	}
	g.loading = g.pending > 0
}

// BeginLoad marks a list request as in flight.
func (g *Gallery) BeginLoad() {
	g.begin()
}

// FinishLoad replaces the collection with the result of a list request.
// A failure empties the collection & queues a notice; it is never fatal.
func (g *Gallery) FinishLoad(images []models.Image, err error) {
	defer g.end()

	if err != nil {
		log.Printf("load images: %v", err)
		g.images = []models.Image{}
		g.notices = append(g.notices, NoticeLoadFailed)
		return
	}
	if images == nil {
		images = []models.Image{}
	}
	g.images = images
}

// Load requests the full collection & replaces whatever was there.
func (g *Gallery) Load(ctx context.Context) {
	g.BeginLoad()
	images, err := g.remote.List(ctx)
	g.FinishLoad(images, err)
}

// Preview opens the preview overlay on the image at idx.
func (g *Gallery) Preview(idx int) bool {
	if idx < 0 || idx >= len(g.images) {
		return false
	}
	img := g.images[idx]
	g.selected = &img
	g.preview = true
	return true
}

func (g *Gallery) ClosePreview() {
	g.preview = false
}

func (g *Gallery) PreviewVisible() bool {
	return g.preview
}

// Selected returns the image currently (or last) previewed.
func (g *Gallery) Selected() (models.Image, bool) {
	if g.selected == nil {
		return models.Image{}, false
	}
	return *g.selected, true
}

// Stage holds a picked file & opens the upload confirmation. Nothing is sent until ConfirmUpload.
func (g *Gallery) Stage(path string) {
	if path == "" {
		return
	}
	g.staged = path
	g.uploadConfirm = true
}

func (g *Gallery) Staged() (string, bool) {
	return g.staged, g.staged != ""
}

func (g *Gallery) UploadConfirmVisible() bool {
	return g.uploadConfirm
}

// CancelUpload closes the confirmation & releases the staged file.
func (g *Gallery) CancelUpload() {
	g.uploadConfirm = false
	g.staged = ""
}

// BeginUpload returns the staged path & marks the upload as in flight.
// ok is false if nothing is staged, in which case nothing should be sent.
func (g *Gallery) BeginUpload() (path string, ok bool) {
	if g.staged == "" {
		return "", false
	}
	g.begin()
	return g.staged, true
}

// FinishUpload applies the outcome of an upload. The confirmation is closed & the staged file released
// no matter what. It returns true if the collection should be reloaded; in that case the caller must
// follow up with BeginLoad/FinishLoad (or Load) so the new image shows up.
func (g *Gallery) FinishUpload(ok bool, err error) (reload bool) {
	defer g.end()
	g.CancelUpload()

	if err != nil {
		log.Printf("upload image: %v", err)
		g.notices = append(g.notices, NoticeUploadFailed)
		return false
	}
	// A falsy result is silently ignored.
	return ok
}

// ConfirmUpload sends the staged file & reloads the collection if the backend stored it.
func (g *Gallery) ConfirmUpload(ctx context.Context) {
	path, ok := g.BeginUpload()
	if !ok {
		return
	}

	stored, err := g.remote.Upload(ctx, path)
	if reload := g.FinishUpload(stored, err); reload {
		g.Load(ctx)
	}
}

// BeginDelete returns the identifier of the previewed image & marks the delete as in flight.
// ok is false if there's no preview or the image has no identifier; nothing should be sent then.
func (g *Gallery) BeginDelete() (id string, ok bool) {
	if !g.preview || g.selected == nil || g.selected.ID == "" {
		return "", false
	}
	g.begin()
	return g.selected.ID, true
}

// FinishDelete applies the outcome of a delete. On success the preview closes & it returns true,
// meaning the caller must reload the collection. On failure the preview stays open.
func (g *Gallery) FinishDelete(err error) (reload bool) {
	defer g.end()

	if err != nil {
		log.Printf("delete image: %v", err)
		g.notices = append(g.notices, NoticeDeleteFailed)
		return false
	}
	g.preview = false
	g.selected = nil
	return true
}

// DeletePreviewed removes the previewed image from the backend & reloads the collection.
func (g *Gallery) DeletePreviewed(ctx context.Context) {
	id, ok := g.BeginDelete()
	if !ok {
		return
	}

	if reload := g.FinishDelete(g.remote.Delete(ctx, id)); reload {
		g.Load(ctx)
	}
}
