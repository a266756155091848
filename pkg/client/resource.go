package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Page is one page of a paginated listing
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ListParams are the common listing parameters. Filters are sent as extra
// query parameters (estado, ciudad, isActive, disponible, ...).
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
	}
	if p.SortDir != "" {
		v.Set("sortDir", p.SortDir)
	}
	for k, val := range p.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Resource is the CRUD surface shared by tenants, properties, users and
// contracts. T is the record, C the create body and U the update body.
type Resource[T, C, U any] struct {
	c          *Client
	path       string
	searchPath string
	// activeField is the body key of SetActive; empty when not supported
	activeField string
	// touches lists extra prefixes a mutation invalidates
	touches []string

	beforeCreate func(*C) error
	beforeUpdate func(*U) error
}

func (r *Resource[T, C, U]) prefixes() []string {
	return append([]string{r.path}, r.touches...)
}

// List fetches one page of records
func (r *Resource[T, C, U]) List(ctx context.Context, params ListParams) (*Page[T], error) {
	var page Page[T]
	if err := r.c.get(ctx, r.path, params.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search fetches one page from the search endpoint, or List when the
// resource has none.
func (r *Resource[T, C, U]) Search(ctx context.Context, params ListParams) (*Page[T], error) {
	if r.searchPath == "" {
		return r.List(ctx, params)
	}
	var page Page[T]
	if err := r.c.get(ctx, r.searchPath, params.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Resource[T, C, U]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := r.c.get(ctx, r.path+"/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, C, U]) Create(ctx context.Context, in C) (*T, error) {
	if r.beforeCreate != nil {
		if err := r.beforeCreate(&in); err != nil {
			return nil, err
		}
	}
	var out T
	if err := r.c.send(ctx, http.MethodPost, r.path, in, &out, r.prefixes()...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends a partial update; the server merges it onto the stored record
func (r *Resource[T, C, U]) Update(ctx context.Context, id uuid.UUID, in U) (*T, error) {
	if r.beforeUpdate != nil {
		if err := r.beforeUpdate(&in); err != nil {
			return nil, err
		}
	}
	var out T
	if err := r.c.send(ctx, http.MethodPatch, r.path+"/"+id.String(), in, &out, r.prefixes()...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, C, U]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.c.send(ctx, http.MethodDelete, r.path+"/"+id.String(), nil, nil, r.prefixes()...)
}

// SetActive toggles isActive (tenants, users) or disponible (properties)
func (r *Resource[T, C, U]) SetActive(ctx context.Context, id uuid.UUID, active bool) (*T, error) {
	if r.activeField == "" {
		return nil, ErrNotActivatable
	}
	var out T
	body := map[string]bool{r.activeField: active}
	if err := r.c.send(ctx, http.MethodPatch, r.path+"/"+id.String()+"/activate", body, &out, r.prefixes()...); err != nil {
		return nil, err
	}
	return &out, nil
}
