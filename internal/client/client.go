// Package client talks to a bestiary HTTP server. Failures come back as
// *errors.BestiaryError: NOT_FOUND for 404, ABORTED when the caller's context
// ended, TRANSPORT for everything else.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/ops"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// Client is an HTTP client for the bestiary JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for baseURL (e.g. "http://127.0.0.1:8151").
// A nil httpClient uses one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ListParams are the GET /entities query parameters. Zero values are omitted.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Type      string
	SortBy    string
	SortOrder string
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
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		v.Set("sortOrder", p.SortOrder)
	}
	return v
}

// ListEntities fetches one page of entity summaries.
func (c *Client) ListEntities(ctx context.Context, p ListParams) (*ops.ListOutput, error) {
	var out ops.ListOutput
	if err := c.do(ctx, http.MethodGet, "/entities", p.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEntity fetches the full record for id.
func (c *Client) GetEntity(ctx context.Context, id int) (*catalog.Entity, error) {
	var out catalog.Entity
	if err := c.do(ctx, http.MethodGet, "/entities/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories fetches the sorted category list.
func (c *Client) Categories(ctx context.Context) (*ops.CategoriesOutput, error) {
	var out ops.CategoriesOutput
	if err := c.do(ctx, http.MethodGet, "/entities/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Favorites fetches the server's favorite ids and their summaries.
func (c *Client) Favorites(ctx context.Context) (*ops.FavoritesOutput, error) {
	var out ops.FavoritesOutput
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleFavorite flips favorite membership for id on the server.
func (c *Client) ToggleFavorite(ctx context.Context, id int) (*ops.FavoriteOutput, error) {
	var out ops.FavoriteOutput
	if err := c.do(ctx, http.MethodPost, "/favorites/"+strconv.Itoa(id)+"/toggle", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetNote attaches a note to id on the server.
func (c *Client) SetNote(ctx context.Context, id int, note string) (*ops.NoteOutput, error) {
	var out ops.NoteOutput
	body := map[string]string{"note": note}
	if err := c.do(ctx, http.MethodPut, "/notes/"+strconv.Itoa(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// errorBody is the JSON error shape rendered by the server.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternal(fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
			return errors.NewAborted(err)
		}
		return errors.NewTransport(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return errors.NewAborted(err)
		}
		return errors.NewTransport(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(resp *http.Response, path string) error {
	var eb errorBody
	// Bodies are small JSON objects; a malformed one only loses the message.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.NewNotFound(path)
	case http.StatusBadRequest:
		return errors.NewInvalidRequest(eb.Error)
	case http.StatusUnprocessableEntity:
		return errors.NewValidation("body", eb.Error)
	}
	return errors.NewTransport(resp.StatusCode, nil)
}
