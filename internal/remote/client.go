// Package remote provides the HTTP client for the UnivMarket data service.
// The core replays queued mutations and refreshes list caches through it;
// the service's own consistency model is not interpreted here.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pritampani/UnivMarket/internal/apperr"
	"github.com/pritampani/UnivMarket/internal/models"
	"github.com/pritampani/UnivMarket/internal/store"
)

// Service is the narrow remote surface the offline core depends on.
type Service interface {
	CreateMessage(ctx context.Context, msg models.MessageMutation) (string, error)
	CreateListing(ctx context.Context, l models.ListingMutation) (string, error)
	ListProducts(ctx context.Context) ([]store.Record, error)
	ListCategories(ctx context.Context) ([]store.Record, error)
	Online(ctx context.Context) bool
}

// Client talks to the remote data service over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

type createResponse struct {
	ID string `json:"id"`
}

type rejectResponse struct {
	Message string `json:"message"`
}

// CreateMessage sends a message and returns the server-assigned id.
func (c *Client) CreateMessage(ctx context.Context, msg models.MessageMutation) (string, error) {
	return c.create(ctx, "/api/messages", msg)
}

// CreateListing creates a product listing and returns the server-assigned id.
func (c *Client) CreateListing(ctx context.Context, l models.ListingMutation) (string, error) {
	return c.create(ctx, "/api/products", l)
}

func (c *Client) create(ctx context.Context, path string, body any) (string, error) {
	var out createResponse
	var reject rejectResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&reject).
		Post(path)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrRemoteUnreachable, fmt.Sprintf("POST %s", path), err)
	}
	if resp.IsError() {
		reason := reject.Message
		if reason == "" {
			reason = resp.Status()
		}
		return "", apperr.New(apperr.ErrRemoteRejected, fmt.Sprintf("POST %s: %s", path, reason))
	}
	return out.ID, nil
}

// ListProducts fetches the full product list as cacheable records.
func (c *Client) ListProducts(ctx context.Context) ([]store.Record, error) {
	return c.list(ctx, "/api/products")
}

// ListCategories fetches the category list as cacheable records.
func (c *Client) ListCategories(ctx context.Context) ([]store.Record, error) {
	return c.list(ctx, "/api/categories")
}

func (c *Client) list(ctx context.Context, path string) ([]store.Record, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRemoteUnreachable, fmt.Sprintf("GET %s", path), err)
	}
	if resp.IsError() {
		return nil, apperr.New(apperr.ErrRemoteRejected, fmt.Sprintf("GET %s: %s", path, resp.Status()))
	}

	var items []map[string]any
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, apperr.Wrap(apperr.ErrRemoteRejected, fmt.Sprintf("decode %s response", path), err)
	}

	recs := make([]store.Record, 0, len(items))
	for _, item := range items {
		id, _ := item["id"].(string)
		if id == "" {
			// Some list endpoints serve numeric ids.
			if n, ok := item["id"].(float64); ok {
				id = fmt.Sprintf("%.0f", n)
			}
		}
		if id == "" {
			return nil, apperr.New(apperr.ErrRemoteRejected, fmt.Sprintf("item without id in %s response", path))
		}

		rec, err := store.NewRecord(id, item)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Online probes the service health endpoint. Any 2xx means reachable.
func (c *Client) Online(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/api/health")
	return err == nil && resp.StatusCode() == http.StatusOK
}
