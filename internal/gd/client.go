package gd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

const (
	defaultBaseURL = "http://www.boomlings.com/database"
	serverSecret   = "Wmfd2893gb7"

	// The level server starts refusing calls spaced closer than about half a
	// second apart.
	callInterval = 510 * time.Millisecond

	// The server returns at most 10 levels per getGJLevels call.
	lookupBatchSize = 10
)

// Raw response field keys of a level string.
const (
	fieldLevelID         = 1
	fieldLevelName       = 2
	fieldAuthorPlayerID  = 6
	fieldDifficultyNum   = 9
	fieldGameVersion     = 13
	fieldLength          = 15
	fieldDemon           = 17
	fieldStars           = 18
	fieldFeatureScore    = 19
	fieldAuto            = 25
	fieldCopiedID        = 30
	fieldRequestedStars  = 39
	fieldEpic            = 42
	fieldDemonDifficulty = 43
)

// Client looks up level metadata on the GD level server. Every call is
// serialized through the injected rate-limit gate so concurrent callers
// cannot violate the server's minimum inter-call spacing.
type Client struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	baseURL    string
}

// NewClient creates a level lookup client with its own serializing gate.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    ratelimit.New(1, ratelimit.Per(callInterval)),
		baseURL:    defaultBaseURL,
	}
}

// GetLevel resolves a single level id. It returns (nil, nil) when the server
// does not know the level, so callers can treat a deleted level as "nothing
// to show" rather than a failure.
func (c *Client) GetLevel(ctx context.Context, levelID int64) (*Level, error) {
	raw, err := c.perform(ctx, "getGJLevels21.php", url.Values{
		"type": {"19"},
		"str":  {strconv.FormatInt(levelID, 10)},
	})
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, "#")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed level response for id %d", levelID)
	}

	authorParts := strings.Split(parts[1], ":")
	author := "Anonymous"
	if len(authorParts) > 1 {
		author = authorParts[1]
	}

	return parseLevel(parts[0], nil, author)
}

// GetLevels resolves a batch of level ids, issuing one call per chunk of ten.
// Unknown ids are simply absent from the result.
func (c *Client) GetLevels(ctx context.Context, levelIDs []int64) (map[int64]*Level, error) {
	result := make(map[int64]*Level, len(levelIDs))

	for start := 0; start < len(levelIDs); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(levelIDs) {
			end = len(levelIDs)
		}

		idStrings := make([]string, 0, end-start)
		for _, id := range levelIDs[start:end] {
			idStrings = append(idStrings, strconv.FormatInt(id, 10))
		}

		raw, err := c.perform(ctx, "getGJLevels21.php", url.Values{
			"type": {"19"},
			"str":  {strings.Join(idStrings, ",")},
		})
		if err != nil {
			return nil, err
		}
		if raw == "" {
			continue
		}

		parts := strings.Split(raw, "#")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed batch level response")
		}

		creators := parseCreators(parts[1])
		for _, levelString := range strings.Split(parts[0], "|") {
			level, err := parseLevel(levelString, creators, "")
			if err != nil {
				return nil, err
			}
			result[level.ID] = level
		}
	}

	return result, nil
}

// perform issues one form-encoded POST after waiting its turn on the gate.
// An empty return with nil error means the server answered "-1" (not found).
func (c *Client) perform(ctx context.Context, endpoint string, form url.Values) (string, error) {
	c.limiter.Take()

	form.Set("secret", serverSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build level server request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// The server rejects requests carrying a client User-Agent.
	req.Header.Set("User-Agent", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("level server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read level server response: %w", err)
	}

	text := string(body)
	if text == "-1" {
		return "", nil
	}
	return text, nil
}

// parseFields splits a colon-separated key:value level string into a map.
func parseFields(levelString string) map[int]string {
	parts := strings.Split(levelString, ":")
	fields := make(map[int]string, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		key, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		fields[key] = parts[i+1]
	}
	return fields
}

// parseCreators maps player ids to creator names from the creators section of
// a batch response.
func parseCreators(section string) map[int64]string {
	creators := make(map[int64]string)
	for _, creatorString := range strings.Split(section, "|") {
		parts := strings.Split(creatorString, ":")
		if len(parts) < 2 {
			continue
		}
		playerID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		creators[playerID] = parts[1]
	}
	return creators
}

func parseLevel(levelString string, creators map[int64]string, precomputedAuthor string) (*Level, error) {
	fields := parseFields(levelString)

	levelID, err := strconv.ParseInt(fields[fieldLevelID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("level string has no parsable id: %w", err)
	}

	author := precomputedAuthor
	if author == "" {
		author = "Anonymous"
		if playerID, err := strconv.ParseInt(fields[fieldAuthorPlayerID], 10, 64); err == nil {
			if name, ok := creators[playerID]; ok {
				author = name
			}
		}
	}

	stars := atoiOrZero(fields[fieldStars])
	level := &Level{
		ID:             levelID,
		Name:           fields[fieldLevelName],
		Author:         author,
		Difficulty:     parseDifficulty(fields),
		Stars:          stars,
		StarsRequested: atoiOrZero(fields[fieldRequestedStars]),
		GameVersion:    parseGameVersion(fields[fieldGameVersion]),
		Length:         Length(atoiOrZero(fields[fieldLength])),
		Grade:          parseGrade(stars, fields),
		CopiedLevelID:  int64(atoiOrZero(fields[fieldCopiedID])),
	}
	return level, nil
}

func parseDifficulty(fields map[int]string) Difficulty {
	if fields[fieldAuto] == "1" {
		return DifficultyAuto
	}
	if fields[fieldDemon] == "1" {
		switch fields[fieldDemonDifficulty] {
		case "3":
			return DifficultyEasyDemon
		case "4":
			return DifficultyMediumDemon
		case "5":
			return DifficultyInsaneDemon
		case "6":
			return DifficultyExtremeDemon
		default:
			return DifficultyHardDemon
		}
	}
	switch fields[fieldDifficultyNum] {
	case "10":
		return DifficultyEasy
	case "20":
		return DifficultyNormal
	case "30":
		return DifficultyHard
	case "40":
		return DifficultyHarder
	case "50":
		return DifficultyInsane
	default:
		return DifficultyUnrated
	}
}

func parseGrade(stars int, fields map[int]string) Grade {
	if stars == 0 {
		return GradeUnrated
	}
	if fields[fieldFeatureScore] == "0" {
		return GradeRated
	}
	switch atoiOrZero(fields[fieldEpic]) {
	case 1:
		return GradeEpic
	case 2:
		return GradeLegendary
	case 3:
		return GradeMythic
	default:
		return GradeFeatured
	}
}

// parseGameVersion renders the raw version number the way the game displays
// it: values up to 7 belong to the 1.0-1.6 era, 10 is 1.7, everything later
// is number/10.
func parseGameVersion(raw string) string {
	version := atoiOrZero(raw)
	switch {
	case version <= 7:
		return fmt.Sprintf("1.%d", version-1)
	case version == 10:
		return "1.7"
	default:
		return fmt.Sprintf("%.1f", float64(version)/10)
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
