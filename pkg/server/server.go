// Package server is a small reference backend for the gallery: an image index with upload, delete
// and resized variants, kept on local disk.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/g026r/pocket-gallery/pkg/api"
	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/models"
)

// MaxUploadSize caps the multipart body accepted by POST /images.
const MaxUploadSize = 32 << 20

type Server struct {
	store     *Store
	publicURL string
}

// New builds a server over store. publicURL prefixes the file URIs handed to clients; leave it
// empty to send server-relative URIs.
func New(store *Store, publicURL string) *Server {
	return &Server{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK\n"))
	}).Methods("GET")
	r.HandleFunc("/images", s.ListHandler).Methods("GET")
	r.HandleFunc("/images", s.UploadHandler).Methods("POST")
	r.HandleFunc("/images/{id}", s.DeleteHandler).Methods("DELETE")
	r.HandleFunc("/files/{name}", s.FileHandler).Methods("GET")
	r.Use(logRequests)
	return r
}

// ListHandler returns every stored image. The identifier is sent as "_id".
func (s *Server) ListHandler(w http.ResponseWriter, _ *http.Request) {
	records := s.store.List()
	images := make([]models.WireImage, 0, len(records))
	for _, rec := range records {
		images = append(images, s.wire(rec))
	}

	writeJSON(w, http.StatusOK, images)
}

// UploadHandler stores the file sent in the "image" form field & returns the new record.
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	f, h, err := r.FormFile(api.UploadField)
	if err != nil {
		http.Error(w, "missing "+api.UploadField+" field", http.StatusBadRequest)
		return
	}
	defer f.Close()

	rec, err := s.store.Add(h.Filename, f)
	switch {
	case errors.Is(err, io.ErrUnsupportedFormat):
		http.Error(w, "unsupported image format", http.StatusUnsupportedMediaType)
		return
	case errors.Is(err, ErrBadImage):
		http.Error(w, "could not decode the image", http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("upload %s: %v", h.Filename, err)
		http.Error(w, "could not store the image", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, s.wire(rec))
}

func (s *Server) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Delete(id); errors.Is(err, ErrNotFound) {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Printf("delete %s: %v", id, err)
		http.Error(w, "could not delete the image", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) FileHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.File(mux.Vars(r)["name"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, p)
}

func (s *Server) wire(rec Record) models.WireImage {
	img := models.WireImage{
		MongoID: rec.ID,
		URI:     s.fileURI(rec.Original),
	}
	if len(rec.Variants) > 0 {
		img.Resolutions = make(map[string]string, len(rec.Variants))
		for res, f := range rec.Variants {
			img.Resolutions[res.String()] = s.fileURI(f)
		}
	}
	return img
}

func (s *Server) fileURI(name string) string {
	return s.publicURL + "/files/" + url.PathEscape(name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
