package requestbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reqpanel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestSendsKeyAndFallsBackToStreamLink(t *testing.T) {
	var gotKey string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/request/create", r.URL.Path)
		gotKey = r.Header.Get("x-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte("900"))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret-key")
	id, err := client.CreateRequest(context.Background(), models.OpenRequest{
		LevelID:  42,
		Creator:  "Creator",
		Language: models.LanguageEnglish,
	}, "https://youtube.com/watch?v=vid42")

	require.NoError(t, err)
	assert.Equal(t, int64(900), id)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "eng", gotPayload["language"])
	assert.Equal(t, "https://youtube.com/watch?v=vid42", gotPayload["showcase_yt_link"])
}

func TestCreateRequestKeepsProvidedShowcaseLink(t *testing.T) {
	payload := buildCreatePayload(models.OpenRequest{
		LevelID:      42,
		ShowcaseLink: "https://youtu.be/showcase",
	}, "https://stream")
	assert.Equal(t, "https://youtu.be/showcase", payload.ShowcaseLink)
}

func TestPickRequestEmptyQueue(t *testing.T) {
	for _, body := range []string{"", "null"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/request/oldest", r.URL.Path)
			_, _ = w.Write([]byte(body))
		}))

		client := NewClient(server.URL, "k")
		req, err := client.PickRequest(context.Background(), true)
		require.NoError(t, err)
		assert.Nil(t, req)
		server.Close()
	}
}

func TestPickRequestDecodesAndRoutesRandom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/request/random", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 55, "level_id": 7, "language": "rus"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	req, err := client.PickRequest(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, int64(55), req.ID)
	assert.Equal(t, int64(7), req.LevelID)
	assert.Equal(t, "rus", req.Language)
}

func TestResolveRequestRejectSendsNullTier(t *testing.T) {
	var gotRaw map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/request/resolve", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRaw))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	err := client.ResolveRequest(context.Background(), 900, models.DecisionReject, "https://stream")
	require.NoError(t, err)
	assert.Equal(t, "null", string(gotRaw["sent_for"]))
}

func TestResolveRequestTierCode(t *testing.T) {
	var gotPayload struct {
		SentFor *string `json:"sent_for"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	require.NoError(t, client.ResolveRequest(context.Background(), 900, models.DecisionMythic, ""))
	require.NotNil(t, gotPayload.SentFor)
	assert.Equal(t, "m", *gotPayload.SentFor)
}

func TestErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong")
	err := client.SendMessage(context.Background(), "hi", RouteStartAnnouncement)
	assert.Error(t, err)
}
