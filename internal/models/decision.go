package models

// Decision is a terminal operator verdict on a pick. Deferral ("later") is a
// separate operation, not a Decision, because it does not resolve the request
// on the bot side.
type Decision string

const (
	DecisionReject    Decision = "rejected"
	DecisionStarrate  Decision = "starrate"
	DecisionFeature   Decision = "feature"
	DecisionEpic      Decision = "epic"
	DecisionLegendary Decision = "legendary"
	DecisionMythic    Decision = "mythic"
)

// BotAPIValue returns the single-letter tier code the bot API expects, or an
// empty string for a rejection (serialized as null).
func (d Decision) BotAPIValue() string {
	switch d {
	case DecisionStarrate:
		return "s"
	case DecisionFeature:
		return "f"
	case DecisionEpic:
		return "e"
	case DecisionLegendary:
		return "l"
	case DecisionMythic:
		return "m"
	default:
		return ""
	}
}

// SpreadsheetValue returns the human label written into the resolved sheet row.
func (d Decision) SpreadsheetValue() string {
	return string(d)
}
