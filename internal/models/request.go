package models

import "time"

// Language is the submission language as it appears in the spreadsheet.
type Language string

const (
	LanguageRussian Language = "Русский"
	LanguageEnglish Language = "English"
)

// LanguageFromBotAPI maps the bot API's language code to a Language.
// Anything that is not "eng" is treated as Russian, matching the bot's own
// two-valued scheme.
func LanguageFromBotAPI(code string) Language {
	if code == "eng" {
		return LanguageEnglish
	}
	return LanguageRussian
}

// BotAPIValue returns the language code the bot API expects.
func (l Language) BotAPIValue() string {
	if l == LanguageEnglish {
		return "eng"
	}
	return "rus"
}

// SpreadsheetValue returns the human-readable value stored in the sheet.
func (l Language) SpreadsheetValue() string {
	return string(l)
}

// FormResponse is a raw row pulled from the "new responses" staging area of
// the spreadsheet. It either gets promoted into an OpenRequest or discarded.
type FormResponse struct {
	SubmittedAt  time.Time
	Language     Language
	LevelID      int64
	ShowcaseLink string
}

// OpenRequest is a normalized, queueable unit of work awaiting an operator
// decision. LevelID is the de-duplication key within one broadcast session.
type OpenRequest struct {
	SubmittedAt  time.Time
	Language     Language
	LevelName    string
	Creator      string
	LevelID      int64
	Stars        int // requested stars, 0 when none were requested
	Difficulty   string
	ShowcaseLink string
}

// BotRequest is a request living in the external bot's own queue, keyed by
// the bot's opaque request id rather than the level id.
type BotRequest struct {
	ID                int64      `json:"id"`
	LevelID           int64      `json:"level_id"`
	Language          string     `json:"language"`
	LevelName         string     `json:"level_name"`
	ShowcaseLink      string     `json:"yt_link"`
	AdditionalComment string     `json:"additional_comment"`
	RequestAuthor     string     `json:"request_author"`
	CreatedAt         time.Time  `json:"created_at"`
	RequestedAt       *time.Time `json:"requested_at"`
}

// PickSource tags which queue a pick was drawn from.
type PickSource string

const (
	PickSourceSheet PickSource = "sheet"
	PickSourceBot   PickSource = "bot"
)

// Pick is the request currently being judged by the operator. BotRequestID is
// the id under which the bot API tracks it: either the id the bot queue
// already assigned, or the one obtained by registering a sheet pick.
type Pick struct {
	Request      OpenRequest
	Source       PickSource
	BotRequestID int64
}
