package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"reqpanel/internal/models"
)

// Settings are the operator-editable values persisted alongside the session
// state in the same JSON file.
type Settings struct {
	APIRootURL            string `json:"api_root_url"`
	APIToken              string `json:"api_token"`
	YouTubeChannelID      string `json:"youtube_channel_id"`
	TwitchLogin           string `json:"twitch_login"`
	FormLink              string `json:"form_link"`
	SpreadsheetLink       string `json:"spreadsheet_link"`
	StartAnnouncementText string `json:"start_announcement_text"`
	EndGoodbyeText        string `json:"end_goodbye_text"`
}

// fileState is the on-disk shape of the settings file. The processed-set is
// serialized as a plain array of level ids.
type fileState struct {
	Settings
	LastStreamID        string  `json:"last_stream_id"`
	LastStreamIsYouTube bool    `json:"last_stream_is_youtube"`
	ProcessedLevels     []int64 `json:"last_stream_processed_levels"`
}

// Store is the durable memory of one broadcast session: operator settings,
// the last known broadcast, and the set of level ids already folded into the
// queue during that broadcast. Access is guarded because panel commands run
// on their own goroutines.
type Store struct {
	mu        sync.Mutex
	path      string
	settings  Settings
	lastID    string
	lastIsYT  bool
	processed map[int64]struct{}
}

// Load reads the settings file at path, returning a Store with defaults when
// the file does not exist yet.
func Load(path string) (*Store, error) {
	s := &Store{
		path:      path,
		processed: make(map[int64]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	s.settings = state.Settings
	s.lastID = state.LastStreamID
	s.lastIsYT = state.LastStreamIsYouTube
	for _, id := range state.ProcessedLevels {
		s.processed[id] = struct{}{}
	}
	return s, nil
}

// Save writes the current state back to disk synchronously, creating the
// parent directory on first save.
func (s *Store) Save() error {
	s.mu.Lock()
	state := fileState{
		Settings:            s.settings,
		LastStreamID:        s.lastID,
		LastStreamIsYouTube: s.lastIsYT,
		ProcessedLevels:     s.processedLocked(),
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	return nil
}

// Settings returns a copy of the current operator settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the operator settings. The caller is expected to Save
// afterwards.
func (s *Store) SetSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// LastBroadcast returns the persisted last known broadcast, if any.
func (s *Store) LastBroadcast() (models.Broadcast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastID == "" {
		return models.Broadcast{}, false
	}
	platform := models.PlatformTwitch
	if s.lastIsYT {
		platform = models.PlatformYouTube
	}
	return models.Broadcast{ID: s.lastID, Platform: platform}, true
}

// RolloverBroadcast records a newly detected broadcast and resets the
// processed-set. It must only be called for a broadcast that differs from the
// persisted one; resetting mid-broadcast would break de-duplication.
func (s *Store) RolloverBroadcast(b models.Broadcast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID = b.ID
	s.lastIsYT = b.Platform == models.PlatformYouTube
	s.processed = make(map[int64]struct{})
}

// IsProcessed reports whether a level id was already folded into the queue
// during the current broadcast.
func (s *Store) IsProcessed(levelID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[levelID]
	return ok
}

// MarkProcessed adds a level id to the processed-set.
func (s *Store) MarkProcessed(levelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[levelID] = struct{}{}
}

// ProcessedLevels returns the processed-set as a sorted slice.
func (s *Store) ProcessedLevels() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processedLocked()
}

func (s *Store) processedLocked() []int64 {
	ids := make([]int64, 0, len(s.processed))
	for id := range s.processed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
