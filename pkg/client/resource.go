package client

import (
	"context"
	"net/http"
	"net/url"
)

// Resource is the accessor set for one resource. Extras such as Like or
// Upcoming only succeed on resources that serve them; others answer 404.
type Resource struct {
	c    *Client
	name string
}

func (r *Resource) path(parts ...string) string {
	p := "/" + r.name
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// GetAll lists records. params carries the listing filters, for example
// category, search, isActive, sort and limit.
func (r *Resource) GetAll(ctx context.Context, params url.Values) ([]Document, error) {
	return r.list(ctx, r.path(), params)
}

func (r *Resource) GetByID(ctx context.Context, id string) (Document, error) {
	return r.one(ctx, http.MethodGet, r.path(id), nil)
}

func (r *Resource) Create(ctx context.Context, body any) (Document, error) {
	return r.one(ctx, http.MethodPost, r.path(), body)
}

// Update sends a partial update; omitted fields keep their values.
func (r *Resource) Update(ctx context.Context, id string, body any) (Document, error) {
	return r.one(ctx, http.MethodPut, r.path(id), body)
}

// Delete soft-deletes the record and returns it with isActive=false.
func (r *Resource) Delete(ctx context.Context, id string) (Document, error) {
	return r.one(ctx, http.MethodDelete, r.path(id), nil)
}

func (r *Resource) PermanentDelete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.path(id, "permanent"), nil, nil, nil)
}

func (r *Resource) Like(ctx context.Context, id string) (Document, error) {
	return r.one(ctx, http.MethodPost, r.path(id, "like"), nil)
}

func (r *Resource) View(ctx context.Context, id string) (Document, error) {
	return r.one(ctx, http.MethodPost, r.path(id, "view"), nil)
}

func (r *Resource) Featured(ctx context.Context) ([]Document, error) {
	return r.list(ctx, r.path("featured"), nil)
}

func (r *Resource) Upcoming(ctx context.Context) ([]Document, error) {
	return r.list(ctx, r.path("upcoming"), nil)
}

func (r *Resource) ByCategory(ctx context.Context, category string) ([]Document, error) {
	return r.list(ctx, r.path("category", category), nil)
}

func (r *Resource) Grouped(ctx context.Context) (Groups, error) {
	var groups Groups
	if err := r.c.do(ctx, http.MethodGet, r.path("grouped"), nil, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *Resource) list(ctx context.Context, path string, params url.Values) ([]Document, error) {
	docs := []Document{}
	if err := r.c.do(ctx, http.MethodGet, path, params, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Resource) one(ctx context.Context, method, path string, body any) (Document, error) {
	var doc Document
	if err := r.c.do(ctx, method, path, nil, body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
