package gd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"
)

func TestRequestedDifficultyLabel(t *testing.T) {
	cases := []struct {
		stars int
		want  string
	}{
		{0, "Unrated"},
		{1, "Auto"},
		{2, "Easy"},
		{3, "Normal"},
		{4, "Hard"},
		{5, "Hard"},
		{6, "Harder"},
		{7, "Harder"},
		{8, "Insane"},
		{9, "Insane"},
		{10, "Demon"},
		{11, "Auto"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RequestedDifficultyLabel(tc.stars), "stars=%d", tc.stars)
	}
}

func TestParseLevelUnrated(t *testing.T) {
	// Unrated level: no stars, requested 5, normal-band difficulty numerator.
	raw := "1:91000001:2:CosmicRush:6:5001:9:30:13:21:15:2:17:0:18:0:19:0:25:0:30:0:39:5:42:0:43:0"

	level, err := parseLevel(raw, nil, "Creator")
	require.NoError(t, err)

	assert.Equal(t, int64(91000001), level.ID)
	assert.Equal(t, "CosmicRush", level.Name)
	assert.Equal(t, "Creator", level.Author)
	assert.Equal(t, DifficultyHard, level.Difficulty)
	assert.Equal(t, 0, level.Stars)
	assert.Equal(t, 5, level.StarsRequested)
	assert.Equal(t, "2.1", level.GameVersion)
	assert.Equal(t, LengthMedium, level.Length)
	assert.Equal(t, GradeUnrated, level.Grade)
	assert.Equal(t, int64(0), level.CopiedLevelID)
}

func TestParseLevelGrades(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Grade
	}{
		{"rated", "1:1:2:A:6:9:9:10:13:21:15:1:17:0:18:4:19:0:25:0:30:0:39:0:42:0:43:0", GradeRated},
		{"featured", "1:2:2:B:6:9:9:10:13:21:15:1:17:0:18:4:19:9500:25:0:30:0:39:0:42:0:43:0", GradeFeatured},
		{"epic", "1:3:2:C:6:9:9:10:13:21:15:1:17:0:18:4:19:9500:25:0:30:0:39:0:42:1:43:0", GradeEpic},
		{"legendary", "1:4:2:D:6:9:9:10:13:21:15:1:17:0:18:4:19:9500:25:0:30:0:39:0:42:2:43:0", GradeLegendary},
		{"mythic", "1:5:2:E:6:9:9:10:13:21:15:1:17:0:18:4:19:9500:25:0:30:0:39:0:42:3:43:0", GradeMythic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := parseLevel(tc.raw, nil, "X")
			require.NoError(t, err)
			assert.Equal(t, tc.want, level.Grade)
		})
	}
}

func TestParseLevelDemonDifficulties(t *testing.T) {
	base := "1:1:2:A:6:9:9:0:13:21:15:1:17:1:18:10:19:0:25:0:30:0:39:0:42:0:43:"
	cases := []struct {
		suffix string
		want   Difficulty
	}{
		{"3", DifficultyEasyDemon},
		{"4", DifficultyMediumDemon},
		{"5", DifficultyInsaneDemon},
		{"6", DifficultyExtremeDemon},
		{"0", DifficultyHardDemon},
	}
	for _, tc := range cases {
		level, err := parseLevel(base+tc.suffix, nil, "X")
		require.NoError(t, err)
		assert.Equal(t, tc.want, level.Difficulty)
	}
}

func TestParseLevelAutoBeatsDemonFlag(t *testing.T) {
	raw := "1:1:2:A:6:9:9:0:13:21:15:1:17:1:18:1:19:0:25:1:30:0:39:0:42:0:43:6"
	level, err := parseLevel(raw, nil, "X")
	require.NoError(t, err)
	assert.Equal(t, DifficultyAuto, level.Difficulty)
}

func TestParseCreatorsMapsBatchAuthors(t *testing.T) {
	creators := parseCreators("5001:Creator:71|5002:OtherGuy:80")
	assert.Equal(t, "Creator", creators[5001])
	assert.Equal(t, "OtherGuy", creators[5002])

	raw := "1:10:2:ByOther:6:5002:9:10:13:21:15:1:17:0:18:0:19:0:25:0:30:0:39:2:42:0:43:0"
	level, err := parseLevel(raw, creators, "")
	require.NoError(t, err)
	assert.Equal(t, "OtherGuy", level.Author)
}

func TestParseLevelUnknownCreatorFallsBackToAnonymous(t *testing.T) {
	raw := "1:11:2:Mystery:6:9999:9:10:13:21:15:1:17:0:18:0:19:0:25:0:30:0:39:2:42:0:43:0"
	level, err := parseLevel(raw, map[int64]string{}, "")
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", level.Author)
}

func TestGetLevelsChunksAndMapsCreators(t *testing.T) {
	level := func(id, playerID string) string {
		return "1:" + id + ":2:Lvl" + id + ":6:" + playerID + ":9:10:13:21:15:1:17:0:18:0:19:0:25:0:30:0:39:2:42:0:43:0"
	}

	var queried []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "19", r.FormValue("type"))
		require.NotEmpty(t, r.FormValue("secret"))
		queried = append(queried, r.FormValue("str"))

		if len(queried) == 1 {
			_, _ = w.Write([]byte(level("1", "5001") + "|" + level("2", "5002") + "#5001:Creator:71|5002:OtherGuy:80#junk"))
			return
		}
		_, _ = w.Write([]byte(level("11", "5001") + "#5001:Creator:71#junk"))
	}))
	defer server.Close()

	client := &Client{
		httpClient: server.Client(),
		limiter:    ratelimit.NewUnlimited(),
		baseURL:    server.URL,
	}

	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	levels, err := client.GetLevels(context.Background(), ids)
	require.NoError(t, err)

	// Eleven ids split into a call of ten and a call of one.
	require.Len(t, queried, 2)
	assert.Len(t, strings.Split(queried[0], ","), 10)
	assert.Equal(t, "11", queried[1])

	require.Contains(t, levels, int64(1))
	require.Contains(t, levels, int64(2))
	require.Contains(t, levels, int64(11))
	assert.Equal(t, "Creator", levels[1].Author)
	assert.Equal(t, "OtherGuy", levels[2].Author)
	assert.Equal(t, "Lvl11", levels[11].Name)
}

func TestGetLevelsSkipsNotFoundChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("-1"))
	}))
	defer server.Close()

	client := &Client{
		httpClient: server.Client(),
		limiter:    ratelimit.NewUnlimited(),
		baseURL:    server.URL,
	}

	levels, err := client.GetLevels(context.Background(), []int64{42})
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestParseGameVersion(t *testing.T) {
	assert.Equal(t, "1.6", parseGameVersion("7"))
	assert.Equal(t, "1.7", parseGameVersion("10"))
	assert.Equal(t, "2.1", parseGameVersion("21"))
	assert.Equal(t, "2.2", parseGameVersion("22"))
}
