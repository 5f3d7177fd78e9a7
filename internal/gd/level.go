package gd

// Difficulty is the face shown on a level, including demon tiers.
type Difficulty string

const (
	DifficultyUnrated      Difficulty = "Unrated"
	DifficultyAuto         Difficulty = "Auto"
	DifficultyEasy         Difficulty = "Easy"
	DifficultyNormal       Difficulty = "Normal"
	DifficultyHard         Difficulty = "Hard"
	DifficultyHarder       Difficulty = "Harder"
	DifficultyInsane       Difficulty = "Insane"
	DifficultyEasyDemon    Difficulty = "Easy Demon"
	DifficultyMediumDemon  Difficulty = "Medium Demon"
	DifficultyHardDemon    Difficulty = "Hard Demon"
	DifficultyInsaneDemon  Difficulty = "Insane Demon"
	DifficultyExtremeDemon Difficulty = "Extreme Demon"
)

// Grade is the server-side rating status of a level.
type Grade string

const (
	GradeUnrated   Grade = "unrated"
	GradeRated     Grade = "rated"
	GradeFeatured  Grade = "featured"
	GradeEpic      Grade = "epic"
	GradeLegendary Grade = "legendary"
	GradeMythic    Grade = "mythic"
)

// Length is the level length class.
type Length int

const (
	LengthTiny Length = iota
	LengthShort
	LengthMedium
	LengthLong
	LengthXL
	LengthPlatformer
)

// Level is the metadata resolved for one level id.
type Level struct {
	ID             int64
	Name           string
	Author         string
	Difficulty     Difficulty
	Stars          int // stars granted, 0 when unrated
	StarsRequested int // stars the creator asked for, 0 when none
	GameVersion    string
	Length         Length
	Grade          Grade
	CopiedLevelID  int64
}

// RequestedDifficultyLabel derives the difficulty label shown for a request
// from the creator's requested star count. Zero means no stars were requested
// and yields "Unrated"; any count outside the known bands falls back to
// "Auto".
func RequestedDifficultyLabel(starsRequested int) string {
	switch starsRequested {
	case 0:
		return "Unrated"
	case 2:
		return string(DifficultyEasy)
	case 3:
		return string(DifficultyNormal)
	case 4, 5:
		return string(DifficultyHard)
	case 6, 7:
		return string(DifficultyHarder)
	case 8, 9:
		return string(DifficultyInsane)
	case 10:
		return "Demon"
	default:
		return string(DifficultyAuto)
	}
}
