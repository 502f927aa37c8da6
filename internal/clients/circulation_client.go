// internal/clients/circulation_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"libranet/internal/catalog"
	"libranet/internal/circulation"
	"libranet/internal/eventstore"
)

const defaultTimeout = 10 * time.Second

// APIError is returned for every non-2xx response. It unwraps to the catalog
// sentinel matching Code, so errors.Is works across the wire.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return catalog.ErrorForCode(e.Code)
}

// CirculationClient talks to a remote circulation API. It implements
// circulation.Service.
type CirculationClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ circulation.Service = (*CirculationClient)(nil)

func NewCirculationClient(baseURL string) *CirculationClient {
	return &CirculationClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *CirculationClient) AddItem(ctx context.Context, item catalog.Item) error {
	return c.do(ctx, http.MethodPost, "/items", item.Details(), nil)
}

func (c *CirculationClient) BorrowItem(ctx context.Context, id int, duration string) (catalog.Result, error) {
	var res catalog.Result
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/items/%d/borrow", id), circulation.BorrowRequest{Duration: duration}, &res)
	return res, err
}

func (c *CirculationClient) ReturnItem(ctx context.Context, id int, lateDays int) (catalog.Result, error) {
	var res catalog.Result
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/items/%d/return", id), circulation.ReturnRequest{LateDays: lateDays}, &res)
	return res, err
}

func (c *CirculationClient) GetItem(ctx context.Context, id int) (catalog.Description, error) {
	var item catalog.Description
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/items/%d", id), nil, &item)
	return item, err
}

func (c *CirculationClient) ListItems(ctx context.Context) ([]catalog.Description, error) {
	var items []catalog.Description
	err := c.do(ctx, http.MethodGet, "/items", nil, &items)
	return items, err
}

func (c *CirculationClient) FindByType(ctx context.Context, t catalog.ItemType) ([]catalog.Description, error) {
	var items []catalog.Description
	err := c.do(ctx, http.MethodGet, "/items?type="+url.QueryEscape(t.String()), nil, &items)
	return items, err
}

func (c *CirculationClient) Fines(ctx context.Context) ([]catalog.FineEntry, error) {
	var fines []catalog.FineEntry
	err := c.do(ctx, http.MethodGet, "/fines", nil, &fines)
	return fines, err
}

func (c *CirculationClient) Play(ctx context.Context, id int) (catalog.PlaybackEvent, error) {
	var ev catalog.PlaybackEvent
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/items/%d/play", id), nil, &ev)
	return ev, err
}

func (c *CirculationClient) Archive(ctx context.Context, id int) (catalog.ArchiveEvent, error) {
	var ev catalog.ArchiveEvent
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/items/%d/archive", id), nil, &ev)
	return ev, err
}

func (c *CirculationClient) History(ctx context.Context, id int) ([]eventstore.Event, error) {
	var events []eventstore.Event
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/items/%d/history", id), nil, &events)
	return events, err
}

func (c *CirculationClient) Events(ctx context.Context, afterSequence int64, limit int) ([]eventstore.Event, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatInt(afterSequence, 10))
	q.Set("limit", strconv.Itoa(limit))

	var events []eventstore.Event
	err := c.do(ctx, http.MethodGet, "/events?"+q.Encode(), nil, &events)
	return events, err
}

func (c *CirculationClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body circulation.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		apiErr.Code = catalog.CodeInternal
		apiErr.Message = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
		return apiErr
	}

	apiErr.Code = body.Code
	apiErr.Message = body.Error
	return apiErr
}
