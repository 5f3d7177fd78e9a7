package sheetqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reqpanel/internal/models"

	"google.golang.org/api/option"
	script "google.golang.org/api/script/v1"
)

// Names of the functions exposed by the spreadsheet automation script.
const (
	fnCloseForm         = "close"
	fnReopenForm        = "reopen"
	fnGetNewResponses   = "get_new_responses"
	fnClearNewResponses = "clear_new_responses"
	fnAppendRequests    = "append_open_requests"
	fnPickOpenRequest   = "pick_open_request"
	fnResolveRequest    = "resolve_request"
	fnCloseRemaining    = "close_remaining_open"
)

// starsNotRequested is the sentinel stored in the stars column when the
// creator did not request a star count.
const starsNotRequested = "NA"

// Form responses arrive with a US-style timestamp, open-request rows carry an
// ISO-ish one written by AppendOpenRequests.
const (
	responseTimeLayout = "1/2/2006 15:04:05"
	requestTimeLayout  = "2006-01-02T15:04:05"
)

// Client drives the spreadsheet-backed request queue through its Apps Script
// endpoint.
type Client struct {
	svc      *script.Service
	scriptID string
}

// NewClient builds the Apps Script client on top of an authorized HTTP
// client.
func NewClient(ctx context.Context, httpClient *http.Client, scriptID string) (*Client, error) {
	svc, err := script.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create apps script service: %w", err)
	}
	return &Client{svc: svc, scriptID: scriptID}, nil
}

// run executes one script function and returns its raw result value.
func (c *Client) run(ctx context.Context, function string, params ...interface{}) (json.RawMessage, error) {
	req := &script.ExecutionRequest{Function: function}
	if len(params) > 0 {
		req.Parameters = params
	}

	op, err := c.svc.Scripts.Run(c.scriptID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("apps script call %s failed: %w", function, err)
	}
	if op.Error != nil {
		return nil, fmt.Errorf("apps script call %s returned script error: %s", function, op.Error.Message)
	}

	var wrapper struct {
		Result json.RawMessage `json:"result"`
	}
	if len(op.Response) > 0 {
		if err := json.Unmarshal(op.Response, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode apps script response for %s: %w", function, err)
		}
	}
	return wrapper.Result, nil
}

// rows decodes a script result into a list of row cells.
func rows(result json.RawMessage) ([][]interface{}, error) {
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}
	var parsed [][]interface{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode sheet rows: %w", err)
	}
	return parsed, nil
}

// NewResponses pulls all pending raw form responses from the staging area.
// The form has separate level-id and showcase columns per language, so the
// language cell decides which columns to read.
func (c *Client) NewResponses(ctx context.Context) ([]models.FormResponse, error) {
	result, err := c.run(ctx, fnGetNewResponses)
	if err != nil {
		return nil, err
	}
	parsed, err := rows(result)
	if err != nil {
		return nil, err
	}

	responses := make([]models.FormResponse, 0, len(parsed))
	for _, row := range parsed {
		if len(row) < 6 {
			continue
		}
		language := models.Language(cellString(row[1]))

		idCell, linkCell := 4, 5
		if language == models.LanguageEnglish {
			idCell, linkCell = 2, 3
		}
		levelID, err := cellInt64(row[idCell])
		if err != nil {
			continue
		}

		submittedAt, err := time.Parse(responseTimeLayout, cellString(row[0]))
		if err != nil {
			continue
		}

		responses = append(responses, models.FormResponse{
			SubmittedAt:  submittedAt,
			Language:     language,
			LevelID:      levelID,
			ShowcaseLink: cellString(row[linkCell]),
		})
	}
	return responses, nil
}

// ClearNewResponses empties the staging area.
func (c *Client) ClearNewResponses(ctx context.Context) error {
	_, err := c.run(ctx, fnClearNewResponses)
	return err
}

// AppendOpenRequests appends the given requests to the open-request queue in
// one batch call.
func (c *Client) AppendOpenRequests(ctx context.Context, reqs []models.OpenRequest) error {
	sheetRows := make([][]interface{}, 0, len(reqs))
	for _, req := range reqs {
		stars := starsNotRequested
		if req.Stars > 0 {
			stars = strconv.Itoa(req.Stars)
		}
		sheetRows = append(sheetRows, []interface{}{
			req.SubmittedAt.Format(requestTimeLayout),
			req.Language.SpreadsheetValue(),
			req.LevelName,
			req.Creator,
			strconv.FormatInt(req.LevelID, 10),
			stars,
			req.Difficulty,
			req.ShowcaseLink,
		})
	}

	_, err := c.run(ctx, fnAppendRequests, sheetRows)
	return err
}

// PickOpenRequest draws the next entry from the open-request queue, oldest
// first or random depending on the policy bit. Returns (nil, nil) when the
// queue is empty.
func (c *Client) PickOpenRequest(ctx context.Context, oldest bool) (*models.OpenRequest, error) {
	result, err := c.run(ctx, fnPickOpenRequest, oldest)
	if err != nil {
		return nil, err
	}
	parsed, err := rows(result)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, nil
	}

	req, err := openRequestFromRow(parsed[0])
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ResolveRequest marks the queue row for the given level with the decision
// label ("starrate", "rejected", "later", ...).
func (c *Client) ResolveRequest(ctx context.Context, levelID int64, label string) error {
	_, err := c.run(ctx, fnResolveRequest, levelID, label)
	return err
}

// CloseRemainingRequests marks all still-open rows closed and returns them so
// they can be dumped into the bot queue.
func (c *Client) CloseRemainingRequests(ctx context.Context, dump bool) ([]models.OpenRequest, error) {
	result, err := c.run(ctx, fnCloseRemaining, dump)
	if err != nil {
		return nil, err
	}
	parsed, err := rows(result)
	if err != nil {
		return nil, err
	}

	reqs := make([]models.OpenRequest, 0, len(parsed))
	for _, row := range parsed {
		req, err := openRequestFromRow(row)
		if err != nil {
			continue
		}
		reqs = append(reqs, *req)
	}
	return reqs, nil
}

// ReopenForm reopens the submission form for new responses.
func (c *Client) ReopenForm(ctx context.Context) error {
	_, err := c.run(ctx, fnReopenForm)
	return err
}

// CloseForm closes the submission form.
func (c *Client) CloseForm(ctx context.Context) error {
	_, err := c.run(ctx, fnCloseForm)
	return err
}

func openRequestFromRow(row []interface{}) (*models.OpenRequest, error) {
	if len(row) < 7 {
		return nil, fmt.Errorf("open request row has %d cells, want at least 7", len(row))
	}

	levelID, err := cellInt64(row[4])
	if err != nil {
		return nil, fmt.Errorf("open request row has no parsable level id: %w", err)
	}

	submittedAt, err := time.Parse(requestTimeLayout, cellString(row[0]))
	if err != nil {
		// Rows edited by hand sometimes lose the time part.
		submittedAt, _ = time.Parse("2006-01-02", cellString(row[0]))
	}

	stars := 0
	if n, err := strconv.Atoi(cellString(row[5])); err == nil {
		stars = n
	}

	showcase := ""
	if len(row) > 7 {
		showcase = cellString(row[7])
	}

	return &models.OpenRequest{
		SubmittedAt:  submittedAt,
		Language:     models.Language(cellString(row[1])),
		LevelName:    cellString(row[2]),
		Creator:      cellString(row[3]),
		LevelID:      levelID,
		Stars:        stars,
		Difficulty:   cellString(row[6]),
		ShowcaseLink: showcase,
	}, nil
}

// cellString renders a sheet cell as a string; numeric cells arrive as JSON
// numbers.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cellInt64(cell interface{}) (int64, error) {
	switch v := cell.(type) {
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("cell %v is not a number", cell)
	}
}
