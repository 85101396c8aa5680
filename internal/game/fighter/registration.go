package fighter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Registration limits.
const (
	MaxNameRunes = 30
	MinNameRunes = 2
	MinStat      = 20.0
	MaxStat      = 95.0
	// StatBase is the free allowance per attribute; only points above it count.
	StatBase = 30.0
	// StatBudget caps the points spent above StatBase across all attributes.
	StatBudget = 1200.0
	// budgetFreeCount is the attribute count up to which the budget is not enforced.
	budgetFreeCount = 6
)

// DrawName is the winner token of a drawn match; no fighter may use it.
const DrawName = "DRAW"

// reservedPhrases are fight-log wordings. A name containing one would make
// log lines ambiguous to text-only renderers.
var reservedPhrases = []string{
	"enters the cage", "swarms with punches", "the referee stops it",
	"taps!", "locks in a", "attempts a submission", "escapes",
	"ground and pound", "secures a takedown", "shoots but", "defends",
	"lands a solid strike", "lands a massive shot", "is hurt!",
	"connects", "misses", "wins by decision", "[critical]", "[round", "[decision]",
	"end of round",
}

// ErrInvalidRegistration is wrapped by every registration validation failure.
var ErrInvalidRegistration = errors.New("invalid registration")

// BudgetedStats lists the attributes bounded by MinStat/MaxStat and counted
// against StatBudget. The trailing four belong to the legacy six-stat format.
var BudgetedStats = []string{
	"striking", "punchSpeed", "kickPower", "headMovement", "footwork", "combinations",
	"wrestling", "takedownDefense", "clinchControl", "trips", "throws",
	"submissions", "submissionDefense", "groundAndPound", "guardPassing", "sweeps",
	"topControl", "bottomGame", "cardio", "chin", "recovery", "strength", "flexibility",
	"grappling", "stamina", "power", "speed",
}

// ValidationError carries the individual problems found in a registration.
type ValidationError struct {
	Message string
	Details []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Unwrap lets callers match ErrInvalidRegistration with errors.Is.
func (e *ValidationError) Unwrap() error { return ErrInvalidRegistration }

// SanitizeName trims name, truncates it to MaxNameRunes runes, and strips
// the characters <>"'.
//
// Postcondition: returns a *ValidationError when fewer than MinNameRunes runes
// remain, the name is DrawName, or it contains fight-log wording.
func SanitizeName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if utf8.RuneCountInString(s) > MaxNameRunes {
		s = string([]rune(s)[:MaxNameRunes])
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, s)
	if utf8.RuneCountInString(s) < MinNameRunes {
		return "", &ValidationError{Message: fmt.Sprintf("Name must be at least %d characters", MinNameRunes)}
	}
	if strings.EqualFold(s, DrawName) {
		return "", &ValidationError{Message: fmt.Sprintf("Name %q is reserved", s)}
	}
	padded := " " + strings.ToLower(s) + " "
	for _, phrase := range reservedPhrases {
		if strings.Contains(padded, " "+phrase) {
			return "", &ValidationError{Message: fmt.Sprintf("Name must not contain %q", phrase)}
		}
	}
	return s, nil
}

// BudgetReport summarises the stat budget of a registration.
type BudgetReport struct {
	// Spent is the sum over budgeted attributes of max(0, value-StatBase).
	Spent float64
	// Counted is the number of budgeted attributes present.
	Counted int
}

// OverBudget reports whether the budget applies and is exceeded.
func (b BudgetReport) OverBudget() bool {
	return b.Counted > budgetFreeCount && b.Spent > StatBudget
}

// ValidateStats normalises raw keys and checks the bounds and budget rules.
//
// Postcondition: on success returns the normalised map and its budget report;
// otherwise a *ValidationError listing every problem.
func ValidateStats(raw map[string]any) (map[string]any, BudgetReport, error) {
	stats := NormalizeKeys(raw)
	var (
		report  BudgetReport
		details []string
	)
	for _, key := range BudgetedStats {
		v, present := stats[key]
		if !present || v == nil {
			continue
		}
		report.Counted++
		n, ok := number(v)
		if !ok {
			details = append(details, fmt.Sprintf("%s: must be a number", key))
			continue
		}
		if n < MinStat {
			details = append(details, fmt.Sprintf("%s: minimum is %g (got %g)", key, MinStat, n))
		}
		if n > MaxStat {
			details = append(details, fmt.Sprintf("%s: maximum is %g (got %g)", key, MaxStat, n))
		}
		report.Spent += max(0, n-StatBase)
	}
	if report.OverBudget() {
		details = append(details, fmt.Sprintf("Over budget: %g / %g points used", report.Spent, StatBudget))
	}
	if len(details) > 0 {
		return nil, report, &ValidationError{Message: "Stats validation failed", Details: details}
	}
	return stats, report, nil
}

// Registration is a validated request to add a competitor to the roster.
type Registration struct {
	Name  string
	Stats map[string]any
}

// NewRegistration sanitises the name and validates the stats.
func NewRegistration(name string, raw map[string]any) (Registration, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return Registration{}, err
	}
	stats, _, err := ValidateStats(raw)
	if err != nil {
		return Registration{}, err
	}
	return Registration{Name: clean, Stats: stats}, nil
}
