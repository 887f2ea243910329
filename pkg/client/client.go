// Package client is a typed accessor for the department CMS HTTP API.
//
//	c := client.New("http://localhost:5000/api")
//	images, err := c.Gallery().Featured(ctx)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resource names as served under /api.
const (
	Faculty        = "faculty"
	Courses        = "courses"
	Events         = "events"
	Gallery        = "gallery"
	Achievements   = "achievements"
	StudyMaterials = "study-materials"
	News           = "news"
)

// Document is one record as the API renders it: declared fields plus id,
// isActive, createdAt and updatedAt.
type Document map[string]any

// ID returns the record id, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Groups buckets documents by two grouping fields, e.g. year then semester.
type Groups map[string]map[string][]Document

// Error is returned for every response with success=false.
type Error struct {
	Status  int
	Message string
	Detail  string
	Errors  []string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  []string        `json:"errors"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for baseURL, the API root ending in /api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resource returns the accessor set for a resource by name.
func (c *Client) Resource(name string) *Resource {
	return &Resource{c: c, name: name}
}

func (c *Client) Faculty() *Resource        { return c.Resource(Faculty) }
func (c *Client) Courses() *Resource        { return c.Resource(Courses) }
func (c *Client) Events() *Resource         { return c.Resource(Events) }
func (c *Client) Gallery() *Resource        { return c.Resource(Gallery) }
func (c *Client) Achievements() *Resource   { return c.Resource(Achievements) }
func (c *Client) StudyMaterials() *Resource { return c.Resource(StudyMaterials) }
func (c *Client) News() *Resource           { return c.Resource(News) }

// do sends the request and decodes the envelope's data into out when out
// is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Detail: strings.TrimSpace(string(raw))}
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &Error{Status: resp.StatusCode, Message: env.Message, Detail: env.Error, Errors: env.Errors}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
