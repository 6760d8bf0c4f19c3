package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/g026r/pocket-gallery/pkg/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	for _, u := range []string{"http://localhost:8080", "https://example.com/gallery/"} {
		_, err := NewClient(u, 0)
		require.NoError(t, err, u)
	}
	for _, u := range []string{"", "localhost:8080", "ftp://example.com", "::"} {
		_, err := NewClient(u, 0)
		require.Error(t, err, u)
	}
}

func TestClient_List(t *testing.T) {
	t.Parallel()
	sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/images", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": "1", "uri": "a"},
			{"_id": "2", "uri": "b", "resolutions": {"250px": "b-250"}},
			{"uri": "orphan"}
		]`)
	}))

	images, err := sut.List(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, "1", images[0].ID)
	require.Equal(t, "2", images[1].ID)
	require.Equal(t, "b-250", images[1].DisplayURI(models.R250))
	require.Equal(t, "b", images[1].DisplayURI(models.R500))
}

func TestClient_ListEmpty(t *testing.T) {
	t.Parallel()
	for _, body := range []string{"[]", "null"} {
		sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		}))

		images, err := sut.List(context.Background())
		require.NoError(t, err, body)
		require.Empty(t, images, body)
	}
}

func TestClient_ListFailure(t *testing.T) {
	t.Parallel()
	sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "database on fire", http.StatusInternalServerError)
	}))

	_, err := sut.List(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusInternalServerError, se.Code)
	require.Equal(t, "database on fire", se.Body)

	sut = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	_, err = sut.List(context.Background())
	require.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(done) })

	sut, err := NewClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	_, err = sut.List(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0o644))

	cases := map[string]bool{
		`{"id": "3", "uri": "c"}`: true,
		`true`:                    true,
		`"ok"`:                    true,
		`1`:                       true,
		`stored`:                  true,
		``:                        false,
		`null`:                    false,
		`false`:                   false,
		`0`:                       false,
		`""`:                      false,
	}
	for body, expected := range cases {
		sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/images", r.URL.Path)

			f, h, err := r.FormFile(UploadField)
			require.NoError(t, err)
			defer f.Close()
			require.Equal(t, "cat.png", h.Filename)
			b, err := io.ReadAll(f)
			require.NoError(t, err)
			require.Equal(t, "not really a png", string(b))

			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, body)
		}))

		ok, err := sut.Upload(context.Background(), path)
		require.NoError(t, err, body)
		require.Equal(t, expected, ok, body)
	}
}

func TestClient_UploadFailure(t *testing.T) {
	t.Parallel()
	calls := 0
	sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "too large", http.StatusRequestEntityTooLarge)
	}))

	_, err := sut.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, 0, calls)

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	ok, err := sut.Upload(context.Background(), path)
	require.ErrorIs(t, err, ErrStatus)
	require.False(t, ok)
	require.Equal(t, 1, calls)
}

func TestClient_Delete(t *testing.T) {
	t.Parallel()
	var deleted []string
	sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path != "/images/1" {
			http.NotFound(w, r)
			return
		}
		deleted = append(deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, sut.Delete(context.Background(), "1"))
	require.Equal(t, []string{"/images/1"}, deleted)

	err := sut.Delete(context.Background(), "2")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.Code)

	err = sut.Delete(context.Background(), "")
	require.ErrorIs(t, err, models.ErrMissingID)
	require.Len(t, deleted, 1)
}

func TestClient_Fetch(t *testing.T) {
	t.Parallel()
	sut := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/a.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "pixels")
	}))

	// Relative & absolute URIs both work
	for _, uri := range []string{"/files/a.png", "files/a.png", sut.endpoint("files", "a.png")} {
		rc, err := sut.Fetch(context.Background(), uri)
		require.NoError(t, err, uri)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		require.Equal(t, "pixels", string(b))
	}

	_, err := sut.Fetch(context.Background(), "/files/b.png")
	require.True(t, errors.Is(err, ErrStatus))
}

func TestTruthy(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"":          false,
		"  \n":      false,
		"null":      false,
		"false":     false,
		"0":         false,
		`""`:        false,
		"true":      true,
		"42":        true,
		`"x"`:       true,
		"[]":        true,
		"{}":        true,
		"not json":  true,
		" \ttrue\n": true,
	}
	for in, expected := range cases {
		if truthy([]byte(in)) != expected {
			t.Errorf("%q: Expected %t got %t", in, expected, !expected)
		}
	}
}
