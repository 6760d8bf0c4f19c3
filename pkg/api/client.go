package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/g026r/pocket-gallery/pkg/models"
)

// Remote is everything the gallery needs from the backend.
type Remote interface {
	List(ctx context.Context) ([]models.Image, error)
	// Upload sends a local file. A false result without an error means the backend accepted the
	// request but didn't store anything.
	Upload(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Fetcher downloads image bytes for previewing.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (io.ReadCloser, error)
}

var ErrStatus = errors.New("unexpected response status")

// StatusError carries the HTTP status & whatever text the backend sent with it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d", ErrStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d %s", ErrStatus, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// UploadField is the multipart field name the backend reads the file from.
const UploadField = "image"

// Client talks to the gallery backend over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https: %s", baseURL)
	}

	return &Client{
		base:    u,
		http:    &http.Client{},
		timeout: timeout,
	}, nil
}

func (c *Client) endpoint(p ...string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(p, "/")
	return u.String()
}

// withTimeout applies the configured timeout, if any, on top of ctx
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) List(ctx context.Context) ([]models.Image, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("images"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	b, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images, rejected, err := models.Ingest(b)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if rejected > 0 {
		log.Printf("list images: dropped %d record(s) without an identifier", rejected)
	}
	return images, nil
}

func (c *Client) Upload(ctx context.Context, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("upload image: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(UploadField, filepath.Base(path))
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return false, fmt.Errorf("upload image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return false, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("images"), body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	b, err := c.do(req)
	if err != nil {
		return false, fmt.Errorf("upload image: %w", err)
	}

	return truthy(b), nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete image: %w", models.ErrMissingID)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("images", url.PathEscape(id)), nil)
	if err != nil {
		return err
	}

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}

// Fetch downloads uri. Relative URIs are resolved against the server address.
// The caller closes the returned body; the timeout applies to the whole download.
func (c *Client) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.ResolveReference(ref).String(), nil)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return &cancelCloser{resp.Body, cancel}, nil
}

// do runs the request & returns the body of a 2xx response
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// truthy decides whether an upload response counts as a success.
// Empty bodies, JSON null, false, 0 & "" are all falsy. Anything else that decodes is truthy,
// as is a body that isn't JSON at all.
func truthy(b []byte) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return false
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return true
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

type cancelCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
