package youtube

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Client wraps the YouTube Data API calls the panel needs: finding the live
// broadcast on a channel and talking to its live chat.
type Client struct {
	svc *yt.Service
}

// NewClient builds the YouTube client on top of an authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// LiveStreamVideoID returns the video id of the channel's currently live
// broadcast, or "" when nothing is live.
func (c *Client) LiveStreamVideoID(ctx context.Context, channelID string) (string, error) {
	resp, err := c.svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		MaxResults(50).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube search failed for channel %s: %w", channelID, err)
	}

	for _, item := range resp.Items {
		if item.Snippet != nil && item.Snippet.LiveBroadcastContent == "live" && item.Id != nil {
			return item.Id.VideoId, nil
		}
	}
	return "", nil
}

// LiveChatID returns the active live chat id of a broadcast, or "" when the
// broadcast has no chat surface.
func (c *Client) LiveChatID(ctx context.Context, videoID string) (string, error) {
	resp, err := c.svc.Videos.List([]string{"liveStreamingDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube video lookup failed for %s: %w", videoID, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].LiveStreamingDetails == nil {
		return "", nil
	}
	return resp.Items[0].LiveStreamingDetails.ActiveLiveChatId, nil
}

// PostToLiveChat posts a text message into a live chat.
func (c *Client) PostToLiveChat(ctx context.Context, liveChatID, text string) error {
	message := &yt.LiveChatMessage{
		Snippet: &yt.LiveChatMessageSnippet{
			LiveChatId: liveChatID,
			Type:       "textMessageEvent",
			TextMessageDetails: &yt.LiveChatTextMessageDetails{
				MessageText: text,
			},
		},
	}

	_, err := c.svc.LiveChatMessages.Insert([]string{"snippet"}, message).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to post to live chat %s: %w", liveChatID, err)
	}
	return nil
}
