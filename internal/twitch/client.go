package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	gqlURL = "https://gql.twitch.tv/gql"

	// Public web client id, the same one the twitch.tv frontend sends.
	webClientID = "kimne78kx3ncx6brgo4mv6wki5h1ko"
)

const streamQueryTemplate = `
query {
  user(login: "%LOGIN%") {
    stream {
      id
    }
  }
}
`

// Client looks up whether a Twitch login is currently streaming via the
// public GraphQL gateway.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Twitch lookup client.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// StreamID returns the id of the login's current stream, or "" when the
// channel is offline.
func (c *Client) StreamID(ctx context.Context, login string) (string, error) {
	payload := struct {
		Query     string            `json:"query"`
		Variables map[string]string `json:"variables"`
	}{
		Query:     strings.ReplaceAll(streamQueryTemplate, "%LOGIN%", login),
		Variables: map[string]string{},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal twitch query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gqlURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build twitch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-id", webClientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twitch lookup failed for %s: %w", login, err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Data struct {
			User *struct {
				Stream *struct {
					ID string `json:"id"`
				} `json:"stream"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode twitch response for %s: %w", login, err)
	}

	if parsed.Data.User == nil || parsed.Data.User.Stream == nil {
		return "", nil
	}
	return parsed.Data.User.Stream.ID, nil
}
