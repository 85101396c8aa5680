// Package fighter defines competitor skill profiles, registration rules,
// archetype presets, and career records.
package fighter

// DefaultStat is the value an unset attribute reads as.
const DefaultStat = 50.0

// Attribute keys as they appear in stored stat maps and profile files.
const (
	KeyStriking        = "striking"
	KeyPunchSpeed      = "punchSpeed"
	KeyPunchPower      = "punchPower"
	KeyWrestling       = "wrestling"
	KeySubmissions     = "submissions"
	KeyCardio          = "cardio"
	KeyChin            = "chin"
	KeyHeadMovement    = "headMovement"
	KeyTakedownDefense = "takedownDefense"
)

// Stats holds the nine engine attributes, conventionally in [0,100].
// Construct partially specified stats with DefaultStats or FromRaw so that
// unset attributes read as DefaultStat.
type Stats struct {
	Striking        float64 `json:"striking" yaml:"striking"`
	PunchSpeed      float64 `json:"punchSpeed" yaml:"punchSpeed"`
	PunchPower      float64 `json:"punchPower" yaml:"punchPower"`
	Wrestling       float64 `json:"wrestling" yaml:"wrestling"`
	Submissions     float64 `json:"submissions" yaml:"submissions"`
	Cardio          float64 `json:"cardio" yaml:"cardio"`
	Chin            float64 `json:"chin" yaml:"chin"`
	HeadMovement    float64 `json:"headMovement" yaml:"headMovement"`
	TakedownDefense float64 `json:"takedownDefense" yaml:"takedownDefense"`
}

// DefaultStats returns Stats with every attribute at DefaultStat.
func DefaultStats() Stats {
	return Stats{
		Striking:        DefaultStat,
		PunchSpeed:      DefaultStat,
		PunchPower:      DefaultStat,
		Wrestling:       DefaultStat,
		Submissions:     DefaultStat,
		Cardio:          DefaultStat,
		Chin:            DefaultStat,
		HeadMovement:    DefaultStat,
		TakedownDefense: DefaultStat,
	}
}

// Clamped returns a copy of s with every attribute limited to [0,100].
func (s Stats) Clamped() Stats {
	return Stats{
		Striking:        clamp(s.Striking),
		PunchSpeed:      clamp(s.PunchSpeed),
		PunchPower:      clamp(s.PunchPower),
		Wrestling:       clamp(s.Wrestling),
		Submissions:     clamp(s.Submissions),
		Cardio:          clamp(s.Cardio),
		Chin:            clamp(s.Chin),
		HeadMovement:    clamp(s.HeadMovement),
		TakedownDefense: clamp(s.TakedownDefense),
	}
}

func clamp(v float64) float64 {
	// NaN fails both comparisons; treat it as unset.
	if v != v {
		return DefaultStat
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Profile is the immutable description of one competitor.
type Profile struct {
	// ID is opaque and unique per pairing. May be empty for ad-hoc fights.
	ID string `json:"id" yaml:"id"`
	// Name is used verbatim in log lines and as the winner token.
	Name  string `json:"name" yaml:"name"`
	Stats Stats  `json:"stats" yaml:"stats"`
}
