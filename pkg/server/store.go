package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	goio "io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/models"
)

const (
	indexName = "index.json"
	filesDir  = "files"
)

var (
	ErrNotFound    = errors.New("image not found")
	ErrInvalidName = errors.New("invalid file name")
	ErrBadImage    = errors.New("could not decode the image")
)

// Record is a stored image. Files are relative to the store's files directory.
type Record struct {
	ID        string                       `json:"_id"`
	Name      string                       `json:"name"` // Name is the file name the image was uploaded as
	Original  string                       `json:"original"`
	Variants  map[models.Resolution]string `json:"variants,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
}

// Store keeps the uploaded originals, their resized variants & a JSON index of both in one directory.
type Store struct {
	dir     string
	mu      sync.RWMutex
	records []Record
}

// NewStore opens the store in dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, filesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	s := &Store{dir: dir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(filepath.Join(s.dir, indexName))
	if errors.Is(err, fs.ErrNotExist) {
		s.records = []Record{}
		return nil
	} else if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	if err := json.Unmarshal(b, &s.records); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	if s.records == nil {
		s.records = []Record{}
	}
	return nil
}

// save writes the index. The caller must hold the write lock.
func (s *Store) save() error {
	b, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}

	tmp := filepath.Join(s.dir, indexName+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return os.Rename(tmp, filepath.Join(s.dir, indexName))
}

// List returns the records, oldest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Add stores an uploaded image along with a variant for every resolution narrower than it.
// Wider resolutions get no variant; clients fall back to the original for those.
func (s *Store) Add(name string, r goio.Reader) (Record, error) {
	name = filepath.Base(name)
	if !io.IsImage(name) {
		return Record{}, fmt.Errorf("%s: %w", name, io.ErrUnsupportedFormat)
	}

	b, err := goio.ReadAll(r)
	if err != nil {
		return Record{}, err
	}
	img, err := io.DecodeImage(bytes.NewReader(b))
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w: %w", name, ErrBadImage, err)
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(name))
	rec := Record{
		ID:        id,
		Name:      name,
		Original:  id + ext,
		Variants:  map[models.Resolution]string{},
		CreatedAt: time.Now().UTC(),
	}
	written := []string{rec.Original}
	cleanup := func() {
		for _, f := range written {
			_ = os.Remove(s.path(f))
		}
	}

	if err := os.WriteFile(s.path(rec.Original), b, 0o644); err != nil {
		return Record{}, fmt.Errorf("write original: %w", err)
	}
	for _, res := range models.Resolutions {
		if img.Bounds().Dx() <= res.Width() {
			continue
		}
		v := fmt.Sprintf("%s-%s%s", id, res, ext)
		if err := s.writeVariant(v, io.Resize(img, res.Width())); err != nil {
			cleanup()
			return Record{}, fmt.Errorf("variant %s: %w", res, err)
		}
		written = append(written, v)
		rec.Variants[res] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if err := s.save(); err != nil {
		s.records = s.records[:len(s.records)-1]
		cleanup()
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) writeVariant(name string, img image.Image) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return err
	}
	if err := io.EncodeImage(f, img, name); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Delete removes the record & its files.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.records, func(r Record) bool { return r.ID == id })
	if idx < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	rec := s.records[idx]
	s.records = slices.Delete(s.records, idx, idx+1)
	if err := s.save(); err != nil {
		s.records = slices.Insert(s.records, idx, rec)
		return err
	}

	for _, f := range append([]string{rec.Original}, variantFiles(rec)...) {
		if err := os.Remove(s.path(f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("delete %s: %v", f, err)
		}
	}
	return nil
}

// File resolves a stored file name to its path on disk.
func (s *Store) File(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	p := s.path(name)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	} else if err != nil {
		return "", err
	}
	return p, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filesDir, name)
}

func variantFiles(r Record) []string {
	files := make([]string, 0, len(r.Variants))
	for _, f := range r.Variants {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}
