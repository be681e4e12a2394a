package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/cortexmem/internal/memory"
)

// MemoryPath is the trader API endpoint serving memory snapshots.
const MemoryPath = "/api/memory"

// ErrNoTrader is returned when a fetch is requested without a trader id.
var ErrNoTrader = errors.New("trader id is required")

// FetchError is a non-2xx answer from the memory endpoint.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// Client reads memory snapshots from the trader API.
type Client struct {
	client *resty.Client
}

// NewClient creates a client for baseURL. No auth headers are attached.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{client: client}
}

// BaseURL returns the address requests are sent to.
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

// FetchMemory issues GET /api/memory?trader_id=... and decodes the snapshot.
func (c *Client) FetchMemory(ctx context.Context, traderID string) (*memory.Snapshot, error) {
	if traderID == "" {
		return nil, ErrNoTrader
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("trader_id", traderID).
		Get(MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("fetch memory for %s: %w", traderID, err)
	}

	if !resp.IsSuccess() {
		return nil, &FetchError{Status: resp.StatusCode(), Body: resp.String()}
	}

	var snap memory.Snapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return nil, fmt.Errorf("failed to parse memory response: %w", err)
	}
	return &snap, nil
}
