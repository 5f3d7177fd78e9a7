package models

// Platform identifies which streaming service a broadcast runs on.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTwitch  Platform = "twitch"
)

// Broadcast is one live session, identified by an opaque platform-specific id.
type Broadcast struct {
	ID       string
	Platform Platform
}

// Equal reports whether two broadcasts refer to the same live session.
func (b Broadcast) Equal(other Broadcast) bool {
	return b.ID == other.ID && b.Platform == other.Platform
}
