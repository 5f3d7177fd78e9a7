package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"reqpanel/internal/models"
	"reqpanel/internal/requestbot"
	"reqpanel/internal/session"

	sentry "github.com/getsentry/sentry-go"
)

// ErrNoBroadcast signals that no live stream was found on any configured
// platform. Expected when the operator opens the panel before going live.
var ErrNoBroadcast = errors.New("no live broadcast found")

// ErrNoLiveChat signals that the active broadcast has no reachable live chat.
var ErrNoLiveChat = errors.New("broadcast has no live chat")

// VideoPlatform is the YouTube side of broadcast detection and chat posting.
type VideoPlatform interface {
	LiveStreamVideoID(ctx context.Context, channelID string) (string, error)
	LiveChatID(ctx context.Context, videoID string) (string, error)
	PostToLiveChat(ctx context.Context, liveChatID, text string) error
}

// StreamLookup resolves whether a Twitch channel is currently live.
type StreamLookup interface {
	StreamID(ctx context.Context, login string) (string, error)
}

// FormQueue controls the submission form and the open-request sheet's
// end-of-stream behavior.
type FormQueue interface {
	ReopenForm(ctx context.Context) error
	CloseForm(ctx context.Context) error
	CloseRemainingRequests(ctx context.Context, dump bool) ([]models.OpenRequest, error)
}

// Messenger is the bot's outgoing surface: announcement routes and batch
// request registration.
type Messenger interface {
	SendMessage(ctx context.Context, text string, route requestbot.RouteID) error
	CreateRequestBatch(ctx context.Context, reqs []models.OpenRequest, streamLink string) error
}

// RequestSource is the picking workflow the lifecycle feeds and drains.
type RequestSource interface {
	IngestNewResponses(ctx context.Context) error
	CurrentLevelID() int64
	SetStreamContext(streamLink, broadcastID string)
}

// Controller drives the broadcast lifecycle: detection across platforms,
// stream start and end ceremonies, and live-chat announcements.
type Controller struct {
	youtube  VideoPlatform
	twitch   StreamLookup
	form     FormQueue
	bot      Messenger
	requests RequestSource
	session  *session.Store

	mu         sync.Mutex
	active     *models.Broadcast
	liveChatID string
}

// ControllerDeps holds the dependencies required by the Controller.
type ControllerDeps struct {
	YouTube  VideoPlatform
	Twitch   StreamLookup
	Form     FormQueue
	Bot      Messenger
	Requests RequestSource
	Session  *session.Store
}

// NewController creates a broadcast lifecycle controller from its
// dependencies.
func NewController(deps ControllerDeps) (*Controller, error) {
	if deps.YouTube == nil {
		return nil, fmt.Errorf("video platform cannot be nil")
	}
	if deps.Twitch == nil {
		return nil, fmt.Errorf("stream lookup cannot be nil")
	}
	if deps.Form == nil {
		return nil, fmt.Errorf("form queue cannot be nil")
	}
	if deps.Bot == nil {
		return nil, fmt.Errorf("messenger cannot be nil")
	}
	if deps.Requests == nil {
		return nil, fmt.Errorf("request source cannot be nil")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	return &Controller{
		youtube:  deps.YouTube,
		twitch:   deps.Twitch,
		form:     deps.Form,
		bot:      deps.Bot,
		requests: deps.Requests,
		session:  deps.Session,
	}, nil
}

// Detect looks for a live broadcast, YouTube first, then Twitch. The second
// return reports whether the found broadcast is the same one the previous
// session was handling, in which case the caller should resume instead of
// starting over. A detection failure on one platform is logged and the next
// platform is still tried.
func (c *Controller) Detect(ctx context.Context) (models.Broadcast, bool, error) {
	settings := c.session.Settings()

	var found *models.Broadcast
	if settings.YouTubeChannelID != "" {
		videoID, err := c.youtube.LiveStreamVideoID(ctx, settings.YouTubeChannelID)
		if err != nil {
			log.Printf("[Detect] YouTube lookup failed: %v", err)
			sentry.CaptureException(err)
		} else if videoID != "" {
			found = &models.Broadcast{ID: videoID, Platform: models.PlatformYouTube}
		}
	}

	if found == nil && settings.TwitchLogin != "" {
		streamID, err := c.twitch.StreamID(ctx, settings.TwitchLogin)
		if err != nil {
			log.Printf("[Detect] Twitch lookup failed: %v", err)
			sentry.CaptureException(err)
		} else if streamID != "" {
			found = &models.Broadcast{ID: streamID, Platform: models.PlatformTwitch}
		}
	}

	if found == nil {
		return models.Broadcast{}, false, ErrNoBroadcast
	}

	last, ok := c.session.LastBroadcast()
	resumed := ok && last.Equal(*found)
	return *found, resumed, nil
}

// Active returns the broadcast currently being handled, if any.
func (c *Controller) Active() *models.Broadcast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start begins handling a freshly detected broadcast: the session rolls over
// to it (persisted before anything observable happens, so a crash cannot
// leave announcements pointing at a forgotten stream), the submission form
// reopens, and the start announcement goes out on the bot route and, when
// the platform has one, the live chat.
func (c *Controller) Start(ctx context.Context, b models.Broadcast) error {
	c.session.RolloverBroadcast(b)
	if err := c.session.Save(); err != nil {
		return fmt.Errorf("failed to persist broadcast rollover: %w", err)
	}

	if err := c.adopt(ctx, b); err != nil {
		return err
	}

	if err := c.form.ReopenForm(ctx); err != nil {
		return fmt.Errorf("failed to reopen the form: %w", err)
	}

	settings := c.session.Settings()
	text, err := renderAnnouncement(settings.StartAnnouncementText, announceData{
		VideoLink:       c.videoLink(b),
		FormLink:        settings.FormLink,
		SpreadsheetLink: settings.SpreadsheetLink,
	})
	if err != nil {
		return fmt.Errorf("start announcement template: %w", err)
	}
	if err := c.bot.SendMessage(ctx, text, requestbot.RouteStartAnnouncement); err != nil {
		return fmt.Errorf("failed to send the start announcement: %w", err)
	}

	// Live chat is nice to have; a stream without one still starts.
	if err := c.postFormLink(ctx); err != nil && !errors.Is(err, ErrNoLiveChat) {
		log.Printf("[Start] posting form link to live chat failed: %v", err)
		sentry.CaptureException(err)
	}

	return nil
}

// Resume re-adopts the broadcast the previous session was handling without
// any of the start ceremony: no rollover, no form reopen, no announcements.
func (c *Controller) Resume(ctx context.Context, b models.Broadcast) error {
	return c.adopt(ctx, b)
}

// adopt makes b the active broadcast, wires the picking workflow's stream
// context and resolves the live chat id when the platform has one.
func (c *Controller) adopt(ctx context.Context, b models.Broadcast) error {
	c.requests.SetStreamContext(c.videoLink(b), b.ID)

	liveChatID := ""
	if b.Platform == models.PlatformYouTube {
		var err error
		liveChatID, err = c.youtube.LiveChatID(ctx, b.ID)
		if err != nil {
			log.Printf("[Broadcast] live chat lookup failed: %v", err)
			sentry.CaptureException(err)
		}
	}

	c.mu.Lock()
	c.active = &b
	c.liveChatID = liveChatID
	c.mu.Unlock()
	return nil
}

// End closes out the active broadcast: the form closes, remaining open
// requests are either archived (dump=false) or drained into the bot's
// standing queue (dump=true, after one final ingest so late submissions are
// not lost), and the goodbye goes out. The level currently under review is
// excluded from the dump since its fate is still being decided.
func (c *Controller) End(ctx context.Context, dump bool) error {
	if err := c.form.CloseForm(ctx); err != nil {
		return fmt.Errorf("failed to close the form: %w", err)
	}

	if dump {
		if err := c.requests.IngestNewResponses(ctx); err != nil {
			log.Printf("[End] final ingest failed, dumping what the sheet has: %v", err)
			sentry.CaptureException(err)
		}
	}

	remaining, err := c.form.CloseRemainingRequests(ctx, dump)
	if err != nil {
		return fmt.Errorf("failed to close remaining requests: %w", err)
	}

	if dump && len(remaining) > 0 {
		currentID := c.requests.CurrentLevelID()
		batch := make([]models.OpenRequest, 0, len(remaining))
		for _, req := range remaining {
			if currentID != 0 && req.LevelID == currentID {
				continue
			}
			batch = append(batch, req)
		}
		if len(batch) > 0 {
			if err := c.bot.CreateRequestBatch(ctx, batch, c.activeVideoLink()); err != nil {
				return fmt.Errorf("failed to dump remaining requests to the bot: %w", err)
			}
		}
	}

	settings := c.session.Settings()
	if settings.EndGoodbyeText != "" {
		if err := c.bot.SendMessage(ctx, settings.EndGoodbyeText, requestbot.RouteEndGoodbye); err != nil {
			return fmt.Errorf("failed to send the goodbye: %w", err)
		}
	}

	c.mu.Lock()
	c.active = nil
	c.liveChatID = ""
	c.mu.Unlock()
	return nil
}

// ClearQueue re-runs the form reopen routine mid-stream. The script's reopen
// function wipes the open-request sheet and accepts submissions again, so
// this is the operator's "start the queue over" action.
func (c *Controller) ClearQueue(ctx context.Context) error {
	if err := c.form.ReopenForm(ctx); err != nil {
		return fmt.Errorf("failed to reopen the form: %w", err)
	}
	return nil
}

// ResendFormLink posts the form link to the live chat again, for when it
// scrolled out of view.
func (c *Controller) ResendFormLink(ctx context.Context) error {
	return c.postFormLink(ctx)
}

func (c *Controller) postFormLink(ctx context.Context) error {
	c.mu.Lock()
	liveChatID := c.liveChatID
	c.mu.Unlock()

	if liveChatID == "" {
		return ErrNoLiveChat
	}

	formLink := c.session.Settings().FormLink
	if err := c.youtube.PostToLiveChat(ctx, liveChatID, formLink); err != nil {
		return fmt.Errorf("failed to post the form link: %w", err)
	}
	return nil
}

// videoLink builds the public watch URL for a broadcast. Twitch stream ids
// are not addressable, so the channel link is used instead.
func (c *Controller) videoLink(b models.Broadcast) string {
	if b.Platform == models.PlatformTwitch {
		return "https://twitch.tv/" + c.session.Settings().TwitchLogin
	}
	return "https://youtube.com/watch?v=" + b.ID
}

func (c *Controller) activeVideoLink() string {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		return ""
	}
	return c.videoLink(*active)
}
