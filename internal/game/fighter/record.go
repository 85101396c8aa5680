package fighter

// Outcome is a competitor's result in one completed match.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// Career progression constants.
const (
	WinXP        = 100
	LossXP       = 25
	XPPerLevel   = 500
	WinRanking   = 15
	LossRanking  = 10
	startRanking = 1000
)

// Record tracks a competitor's career across matches.
type Record struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Draws       int `json:"draws"`
	KOs         int `json:"kos"`
	Submissions int `json:"submissions"`
	TotalFights int `json:"totalFights"`
	// WinStreak is positive during a winning run and negative during a losing run.
	WinStreak     int `json:"winStreak"`
	BestWinStreak int `json:"bestWinStreak"`
	XP            int `json:"xp"`
	Level         int `json:"level"`
	Ranking       int `json:"ranking"`
}

// NewRecord returns the record of a freshly registered competitor.
func NewRecord() Record {
	return Record{Level: 1, Ranking: startRanking}
}

// Apply folds one match outcome into the record. method is the match finish
// method ("KO", "TKO", "SUB", "DEC") and is consulted only for wins.
//
// Postcondition: Ranking >= 0 and Level never decreases.
func (r Record) Apply(outcome Outcome, method string) Record {
	switch outcome {
	case OutcomeWin:
		r.Wins++
		r.WinStreak = max(0, r.WinStreak) + 1
		r.BestWinStreak = max(r.BestWinStreak, r.WinStreak)
		switch method {
		case "KO", "TKO":
			r.KOs++
		case "SUB":
			r.Submissions++
		}
		r.XP += WinXP
		r.Ranking += WinRanking
	case OutcomeLoss:
		r.Losses++
		r.WinStreak = min(0, r.WinStreak) - 1
		r.XP += LossXP
		r.Ranking = max(0, r.Ranking-LossRanking)
	default:
		r.Draws++
		r.XP += LossXP
	}
	r.TotalFights++
	r.Level = max(r.Level, r.XP/XPPerLevel+1)
	return r
}

// WinRate returns wins as a percentage of total fights, or 0 before the first fight.
func (r Record) WinRate() float64 {
	if r.TotalFights == 0 {
		return 0
	}
	return float64(r.Wins) * 100 / float64(r.TotalFights)
}
