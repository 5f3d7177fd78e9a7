package requestbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reqpanel/internal/models"
)

// API endpoints, relative to the configured root URL.
const (
	endpointSendMessage        = "/message/send"
	endpointResolveRequest     = "/request/resolve"
	endpointPreApproveRequest  = "/request/preapprove"
	endpointCreateRequest      = "/request/create"
	endpointCreateRequestBatch = "/request/create_batch"
	endpointOldestRequest      = "/request/oldest"
	endpointRandomRequest      = "/request/random"
)

// RouteID identifies which of the bot's outgoing message routes a text is
// posted to.
type RouteID string

const (
	RouteStartAnnouncement RouteID = "stream_start"
	RouteEndGoodbye        RouteID = "stream_end"
)

// Client talks to the request bot's HTTP API. Authentication is a static key
// in the x-key header.
type Client struct {
	rootURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a bot API client for the given root URL and key.
func NewClient(rootURL, token string) *Client {
	return &Client{
		rootURL:    strings.TrimSuffix(rootURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetCredentials updates the root URL and key, for when the operator edits
// settings between streams.
func (c *Client) SetCredentials(rootURL, token string) {
	c.rootURL = strings.TrimSuffix(rootURL, "/")
	c.token = token
}

type createRequestPayload struct {
	LevelID      int64  `json:"level_id"`
	CreatorName  string `json:"creator_name"`
	Language     string `json:"language"`
	ShowcaseLink string `json:"showcase_yt_link"`
}

func buildCreatePayload(req models.OpenRequest, fallbackShowcaseLink string) createRequestPayload {
	showcase := req.ShowcaseLink
	if showcase == "" {
		showcase = fallbackShowcaseLink
	}
	return createRequestPayload{
		LevelID:      req.LevelID,
		CreatorName:  req.Creator,
		Language:     req.Language.BotAPIValue(),
		ShowcaseLink: showcase,
	}
}

// CreateRequest registers an open request with the bot and returns the bot's
// request id. The stream link stands in for a missing showcase link.
func (c *Client) CreateRequest(ctx context.Context, req models.OpenRequest, streamLink string) (int64, error) {
	var requestID int64
	err := c.post(ctx, endpointCreateRequest, buildCreatePayload(req, streamLink), &requestID)
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

// CreateRequestBatch registers several open requests in one call, used when
// draining the spreadsheet queue at stream end.
func (c *Client) CreateRequestBatch(ctx context.Context, reqs []models.OpenRequest, streamLink string) error {
	payload := make([]createRequestPayload, 0, len(reqs))
	for _, req := range reqs {
		payload = append(payload, buildCreatePayload(req, streamLink))
	}
	return c.post(ctx, endpointCreateRequestBatch, payload, nil)
}

// PickRequest fetches (and claims) the next request from the bot's queue,
// oldest-first or random depending on the policy bit. Returns (nil, nil) when
// the bot queue is empty.
func (c *Client) PickRequest(ctx context.Context, oldest bool) (*models.BotRequest, error) {
	endpoint := endpointRandomRequest
	if oldest {
		endpoint = endpointOldestRequest
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var req models.BotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("failed to decode bot request: %w", err)
	}
	return &req, nil
}

// ResolveRequest reports a terminal verdict for a request. A rejection is
// sent with a null tier code.
func (c *Client) ResolveRequest(ctx context.Context, requestID int64, decision models.Decision, streamLink string) error {
	payload := struct {
		RequestID  int64   `json:"request_id"`
		SentFor    *string `json:"sent_for"`
		StreamLink string  `json:"stream_link"`
	}{
		RequestID:  requestID,
		StreamLink: streamLink,
	}
	if code := decision.BotAPIValue(); code != "" {
		payload.SentFor = &code
	}
	return c.post(ctx, endpointResolveRequest, payload, nil)
}

// PreApproveRequest marks a request as deferred so the bot neither re-serves
// nor resolves it.
func (c *Client) PreApproveRequest(ctx context.Context, requestID int64) error {
	payload := struct {
		RequestID int64 `json:"request_id"`
	}{RequestID: requestID}
	return c.post(ctx, endpointPreApproveRequest, payload, nil)
}

// SendMessage posts a text to one of the bot's message routes.
func (c *Client) SendMessage(ctx context.Context, text string, route RouteID) error {
	payload := struct {
		Text    string `json:"text"`
		RouteID string `json:"target_route_id"`
	}{Text: text, RouteID: string(route)}
	return c.post(ctx, endpointSendMessage, payload, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rootURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-key", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bot API call %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("bot API call %s returned status %d", endpoint, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode bot API response from %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rootURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("x-key", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bot API call %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("bot API call %s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot API response from %s: %w", endpoint, err)
	}
	return bytes.TrimSpace(body), nil
}
