package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingID = errors.New("image has no identifier")

// Image is a single gallery photo as known to the client.
// ID is the canonical identifier, resolved once by Ingest; nothing else should look at the wire fields.
type Image struct {
	ID          string
	URI         string
	Resolutions map[Resolution]string
}

// DisplayURI returns the URI to show for the given label, falling back to the base URI
// when the backend didn't supply that variant.
func (i Image) DisplayURI(r Resolution) string {
	if i.HasVariant(r) {
		return i.Resolutions[r]
	}
	return i.URI
}

// HasVariant reports whether the backend supplied a usable URI for the label.
func (i Image) HasVariant(r Resolution) bool {
	return i.Resolutions[r] != ""
}

func (i Image) FilterValue() string {
	return i.ID
}

func (i Image) String() string {
	return i.ID
}

// WireImage is the record as the backend sends it. Depending on the storage behind it the backend
// names the identifier either "id" or "_id".
type WireImage struct {
	ID          string            `json:"id,omitempty"`
	MongoID     string            `json:"_id,omitempty"`
	URI         string            `json:"uri"`
	Resolutions map[string]string `json:"resolutions,omitempty"`
}

// Image converts the wire record, resolving the identifier. "id" wins over "_id".
func (w WireImage) Image() (Image, error) {
	id := strings.TrimSpace(w.ID)
	if id == "" {
		id = strings.TrimSpace(w.MongoID)
	}
	if id == "" {
		return Image{}, fmt.Errorf("uri %q: %w", w.URI, ErrMissingID)
	}

	img := Image{ID: id, URI: w.URI}
	if len(w.Resolutions) > 0 {
		img.Resolutions = make(map[Resolution]string, len(w.Resolutions))
		for k, v := range w.Resolutions {
			img.Resolutions[Resolution(k)] = v
		}
	}
	return img, nil
}

// Wire is the inverse of WireImage.Image. Only "id" is written.
func (i Image) Wire() WireImage {
	w := WireImage{ID: i.ID, URI: i.URI}
	if len(i.Resolutions) > 0 {
		w.Resolutions = make(map[string]string, len(i.Resolutions))
		for k, v := range i.Resolutions {
			w.Resolutions[string(k)] = v
		}
	}
	return w
}

// Ingest decodes a JSON array of wire records. Records without an identifier are dropped;
// rejected holds how many there were so the caller can flag it.
// A JSON null is treated as an empty collection.
func Ingest(b []byte) (images []Image, rejected int, err error) {
	var raw []WireImage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode images: %w", err)
	}

	images = make([]Image, 0, len(raw))
	for _, w := range raw {
		img, err := w.Image()
		if errors.Is(err, ErrMissingID) {
			rejected++
			continue
		}
		images = append(images, img)
	}
	return images, rejected, nil
}
