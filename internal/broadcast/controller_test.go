package broadcast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reqpanel/internal/models"
	"reqpanel/internal/requestbot"
	"reqpanel/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockVideoPlatform struct {
	mock.Mock
}

func (m *MockVideoPlatform) LiveStreamVideoID(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func (m *MockVideoPlatform) LiveChatID(ctx context.Context, videoID string) (string, error) {
	args := m.Called(ctx, videoID)
	return args.String(0), args.Error(1)
}

func (m *MockVideoPlatform) PostToLiveChat(ctx context.Context, liveChatID, text string) error {
	args := m.Called(ctx, liveChatID, text)
	return args.Error(0)
}

type MockStreamLookup struct {
	mock.Mock
}

func (m *MockStreamLookup) StreamID(ctx context.Context, login string) (string, error) {
	args := m.Called(ctx, login)
	return args.String(0), args.Error(1)
}

type MockFormQueue struct {
	mock.Mock
}

func (m *MockFormQueue) ReopenForm(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFormQueue) CloseForm(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFormQueue) CloseRemainingRequests(ctx context.Context, dump bool) ([]models.OpenRequest, error) {
	args := m.Called(ctx, dump)
	if reqs, ok := args.Get(0).([]models.OpenRequest); ok {
		return reqs, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendMessage(ctx context.Context, text string, route requestbot.RouteID) error {
	args := m.Called(ctx, text, route)
	return args.Error(0)
}

func (m *MockMessenger) CreateRequestBatch(ctx context.Context, reqs []models.OpenRequest, streamLink string) error {
	args := m.Called(ctx, reqs, streamLink)
	return args.Error(0)
}

type MockRequestSource struct {
	mock.Mock
}

func (m *MockRequestSource) IngestNewResponses(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRequestSource) CurrentLevelID() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockRequestSource) SetStreamContext(streamLink, broadcastID string) {
	m.Called(streamLink, broadcastID)
}

// --- Helpers ---

type controllerFixture struct {
	controller *Controller
	youtube    *MockVideoPlatform
	twitch     *MockStreamLookup
	form       *MockFormQueue
	bot        *MockMessenger
	requests   *MockRequestSource
	store      *session.Store
	storePath  string
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := session.Load(path)
	require.NoError(t, err)
	store.SetSettings(session.Settings{
		YouTubeChannelID:      "UC123",
		TwitchLogin:           "streamer",
		FormLink:              "https://forms.example/submit",
		SpreadsheetLink:       "https://sheets.example/queue",
		StartAnnouncementText: "Live at {{.VideoLink}} — submit: {{.FormLink}}, queue: {{.SpreadsheetLink}}",
		EndGoodbyeText:        "That's all folks",
	})

	f := &controllerFixture{
		youtube:   new(MockVideoPlatform),
		twitch:    new(MockStreamLookup),
		form:      new(MockFormQueue),
		bot:       new(MockMessenger),
		requests:  new(MockRequestSource),
		store:     store,
		storePath: path,
	}

	f.controller, err = NewController(ControllerDeps{
		YouTube:  f.youtube,
		Twitch:   f.twitch,
		Form:     f.form,
		Bot:      f.bot,
		Requests: f.requests,
		Session:  store,
	})
	require.NoError(t, err)
	return f
}

// --- Detection ---

func TestDetectPrefersYouTube(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	f.youtube.On("LiveStreamVideoID", ctx, "UC123").Return("vid42", nil)

	b, resumed, err := f.controller.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Broadcast{ID: "vid42", Platform: models.PlatformYouTube}, b)
	assert.False(t, resumed)
	f.twitch.AssertNotCalled(t, "StreamID", mock.Anything, mock.Anything)
}

func TestDetectFallsBackToTwitch(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	f.youtube.On("LiveStreamVideoID", ctx, "UC123").Return("", nil)
	f.twitch.On("StreamID", ctx, "streamer").Return("tw77", nil)

	b, _, err := f.controller.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTwitch, b.Platform)
	assert.Equal(t, "tw77", b.ID)
}

func TestDetectTriesTwitchWhenYouTubeErrors(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	f.youtube.On("LiveStreamVideoID", ctx, "UC123").Return("", errors.New("quota"))
	f.twitch.On("StreamID", ctx, "streamer").Return("tw77", nil)

	b, _, err := f.controller.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tw77", b.ID)
}

func TestDetectNoBroadcastAnywhere(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	f.youtube.On("LiveStreamVideoID", ctx, "UC123").Return("", nil)
	f.twitch.On("StreamID", ctx, "streamer").Return("", nil)

	_, _, err := f.controller.Detect(ctx)
	assert.ErrorIs(t, err, ErrNoBroadcast)
}

func TestDetectReportsResumeForKnownBroadcast(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.store.RolloverBroadcast(models.Broadcast{ID: "vid42", Platform: models.PlatformYouTube})

	f.youtube.On("LiveStreamVideoID", ctx, "UC123").Return("vid42", nil)

	_, resumed, err := f.controller.Detect(ctx)
	require.NoError(t, err)
	assert.True(t, resumed)
}

// --- Start ---

func TestStartPersistsRolloverBeforeAnnouncing(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	b := models.Broadcast{ID: "vid42", Platform: models.PlatformYouTube}
	f.store.MarkProcessed(99)

	f.requests.On("SetStreamContext", "https://youtube.com/watch?v=vid42", "vid42").Return()
	f.youtube.On("LiveChatID", ctx, "vid42").Return("chat1", nil)
	f.form.On("ReopenForm", ctx).Return(nil)
	f.bot.On("SendMessage", ctx,
		"Live at https://youtube.com/watch?v=vid42 — submit: https://forms.example/submit, queue: https://sheets.example/queue",
		requestbot.RouteStartAnnouncement).Return(nil)
	f.youtube.On("PostToLiveChat", ctx, "chat1", "https://forms.example/submit").Return(nil)

	require.NoError(t, f.controller.Start(ctx, b))

	// The rollover hit disk and wiped the previous stream's processed set.
	raw, err := os.ReadFile(f.storePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_stream_id": "vid42"`)
	assert.Empty(t, f.store.ProcessedLevels())
	f.bot.AssertExpectations(t)
}

func TestStartTwitchSkipsLiveChat(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	b := models.Broadcast{ID: "tw77", Platform: models.PlatformTwitch}

	f.requests.On("SetStreamContext", "https://twitch.tv/streamer", "tw77").Return()
	f.form.On("ReopenForm", ctx).Return(nil)
	f.bot.On("SendMessage", ctx, mock.Anything, requestbot.RouteStartAnnouncement).Return(nil)

	require.NoError(t, f.controller.Start(ctx, b))
	f.youtube.AssertNotCalled(t, "LiveChatID", mock.Anything, mock.Anything)
	f.youtube.AssertNotCalled(t, "PostToLiveChat", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartFailsOnBrokenTemplate(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	settings := f.store.Settings()
	settings.StartAnnouncementText = "Live at {{.VideoLink"
	f.store.SetSettings(settings)
	b := models.Broadcast{ID: "vid42", Platform: models.PlatformYouTube}

	f.requests.On("SetStreamContext", mock.Anything, mock.Anything).Return()
	f.youtube.On("LiveChatID", ctx, "vid42").Return("chat1", nil)
	f.form.On("ReopenForm", ctx).Return(nil)

	assert.Error(t, f.controller.Start(ctx, b))
	f.bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

// --- Resume ---

func TestResumeSkipsCeremony(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	b := models.Broadcast{ID: "vid42", Platform: models.PlatformYouTube}

	f.requests.On("SetStreamContext", "https://youtube.com/watch?v=vid42", "vid42").Return()
	f.youtube.On("LiveChatID", ctx, "vid42").Return("chat1", nil)

	require.NoError(t, f.controller.Resume(ctx, b))
	f.form.AssertNotCalled(t, "ReopenForm", mock.Anything)
	f.bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, &b, f.controller.Active())
}

// --- End ---

func adoptYouTube(t *testing.T, f *controllerFixture, ctx context.Context) {
	t.Helper()
	f.requests.On("SetStreamContext", mock.Anything, mock.Anything).Return()
	f.youtube.On("LiveChatID", ctx, "vid42").Return("chat1", nil)
	require.NoError(t, f.controller.Resume(ctx, models.Broadcast{ID: "vid42", Platform: models.PlatformYouTube}))
}

func TestEndWithDumpDrainsQueueToBot(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	adoptYouTube(t, f, ctx)

	remaining := []models.OpenRequest{
		{LevelID: 42, LevelName: "CosmicRush"},
		{LevelID: 7, LevelName: "Underway"},
	}

	f.form.On("CloseForm", ctx).Return(nil)
	f.requests.On("IngestNewResponses", ctx).Return(nil)
	f.form.On("CloseRemainingRequests", ctx, true).Return(remaining, nil)
	f.requests.On("CurrentLevelID").Return(int64(42))
	f.bot.On("CreateRequestBatch", ctx, mock.MatchedBy(func(batch []models.OpenRequest) bool {
		return len(batch) == 1 && batch[0].LevelID == 7
	}), "https://youtube.com/watch?v=vid42").Return(nil)
	f.bot.On("SendMessage", ctx, "That's all folks", requestbot.RouteEndGoodbye).Return(nil)

	require.NoError(t, f.controller.End(ctx, true))
	assert.Nil(t, f.controller.Active())
	f.bot.AssertExpectations(t)
}

func TestEndWithoutDumpJustArchives(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	adoptYouTube(t, f, ctx)

	f.form.On("CloseForm", ctx).Return(nil)
	f.form.On("CloseRemainingRequests", ctx, false).Return([]models.OpenRequest{}, nil)
	f.bot.On("SendMessage", ctx, "That's all folks", requestbot.RouteEndGoodbye).Return(nil)

	require.NoError(t, f.controller.End(ctx, false))
	f.requests.AssertNotCalled(t, "IngestNewResponses", mock.Anything)
	f.bot.AssertNotCalled(t, "CreateRequestBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestEndDumpSurvivesFinalIngestFailure(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	adoptYouTube(t, f, ctx)

	f.form.On("CloseForm", ctx).Return(nil)
	f.requests.On("IngestNewResponses", ctx).Return(errors.New("script timeout"))
	f.form.On("CloseRemainingRequests", ctx, true).Return([]models.OpenRequest{{LevelID: 7}}, nil)
	f.requests.On("CurrentLevelID").Return(int64(0))
	f.bot.On("CreateRequestBatch", ctx, mock.Anything, mock.Anything).Return(nil)
	f.bot.On("SendMessage", ctx, mock.Anything, requestbot.RouteEndGoodbye).Return(nil)

	assert.NoError(t, f.controller.End(ctx, true))
}

// --- Clear queue ---

func TestClearQueueReopensForm(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	f.form.On("ReopenForm", ctx).Return(nil)
	require.NoError(t, f.controller.ClearQueue(ctx))
	f.form.AssertExpectations(t)
}

func TestClearQueueSurfacesFailure(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	f.form.On("ReopenForm", ctx).Return(errors.New("script timeout"))
	assert.Error(t, f.controller.ClearQueue(ctx))
}

// --- Form link ---

func TestResendFormLinkPostsToChat(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	adoptYouTube(t, f, ctx)

	f.youtube.On("PostToLiveChat", ctx, "chat1", "https://forms.example/submit").Return(nil)
	require.NoError(t, f.controller.ResendFormLink(ctx))
}

func TestResendFormLinkWithoutChatFails(t *testing.T) {
	f := newControllerFixture(t)
	assert.ErrorIs(t, f.controller.ResendFormLink(context.Background()), ErrNoLiveChat)
}

// --- Announcement template ---

func TestRenderAnnouncementExpandsAllFields(t *testing.T) {
	out, err := renderAnnouncement("go {{.VideoLink}} / {{.FormLink}} / {{.SpreadsheetLink}}", announceData{
		VideoLink:       "v",
		FormLink:        "f",
		SpreadsheetLink: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "go v / f / s", out)
}

func TestRenderAnnouncementRejectsUnknownField(t *testing.T) {
	_, err := renderAnnouncement("{{.Nope}}", announceData{})
	assert.Error(t, err)
}
