package combat

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

// ErrInvalidInvocation is returned when Simulate is called with a profile
// that has no name or with the same competitor on both sides.
var ErrInvalidInvocation = errors.New("invalid match invocation")

var budgetExpr = dice.MustParse(ExchangeBudget)

// Engine resolves matches. It holds no per-match state and is safe for
// concurrent use as long as its Source is.
type Engine struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewEngine creates an Engine drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewEngine(src dice.Source, logger *zap.Logger) *Engine {
	return &Engine{roller: dice.NewLoggedRoller(src, logger), logger: logger}
}

// Option adjusts a single Simulate call.
type Option func(*bout)

// WithSource makes one Simulate call draw from src instead of the engine's
// Source. Pass a seeded source to replay a match.
func WithSource(src dice.Source) Option {
	return func(b *bout) {
		b.src = src
		b.roller = b.roller.WithSource(src)
	}
}

// Simulate runs one complete match between a and b.
//
// Precondition: a and b have non-blank, distinct names and distinct IDs.
// Postcondition: Returns a fully populated Result, or ErrInvalidInvocation
// and no Result.
func (e *Engine) Simulate(a, b fighter.Profile, opts ...Option) (Result, error) {
	if err := validatePair(a, b); err != nil {
		return Result{}, err
	}

	m := &bout{
		a:      NewCompetitor(a),
		b:      NewCompetitor(b),
		src:    e.roller.Source(),
		roller: e.roller,
		budget: budgetExpr,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.run()

	res := m.result()
	e.logger.Info("match finished",
		zap.String("red", a.Name),
		zap.String("blue", b.Name),
		zap.String("winner", res.Winner),
		zap.String("method", string(res.Method)),
		zap.Int("round", res.FinishRound),
		zap.Int("exchanges", res.Exchanges),
	)
	return res, nil
}

func validatePair(a, b fighter.Profile) error {
	var errs []string
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "first competitor has no name")
	}
	if strings.TrimSpace(b.Name) == "" {
		errs = append(errs, "second competitor has no name")
	}
	if a.ID != "" && a.ID == b.ID {
		errs = append(errs, fmt.Sprintf("competitor %q cannot fight itself", a.ID))
	}
	if a.Name != "" && a.Name == b.Name {
		errs = append(errs, fmt.Sprintf("both competitors are named %q", a.Name))
	}
	if a.Name == Draw || b.Name == Draw {
		errs = append(errs, fmt.Sprintf("%q is reserved", Draw))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInvocation, strings.Join(errs, "; "))
	}
	return nil
}
