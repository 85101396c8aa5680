// Package handlers implements the arena's terminal session.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/frontend/telnet"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/command"
	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

const (
	prompt         = "fightbook> "
	historyDefault = 10
)

// ArenaService is the arena surface a terminal session uses.
// *arena.Service implements it.
type ArenaService interface {
	RegisterFighter(ctx context.Context, requester, name string, stats, metadata map[string]any) (arena.Fighter, error)
	Fighters(ctx context.Context) ([]arena.Fighter, error)
	FindFighter(ctx context.Context, name string) (arena.Fighter, error)
	StartFight(ctx context.Context, requester, id1, id2 string) (arena.Fight, error)
	RecentFights(ctx context.Context, limit int) ([]arena.Fight, error)
	Leaderboard(ctx context.Context) ([]arena.Standing, error)
}

// ArenaHandler runs the command loop for one telnet client.
// It implements telnet.SessionHandler.
type ArenaHandler struct {
	arena     ArenaService
	registry  *command.Registry
	src       dice.Source
	lineDelay time.Duration
	logger    *zap.Logger
}

// NewArenaHandler creates an ArenaHandler. src picks fighters for the
// random command; lineDelay paces fight playback.
//
// Precondition: svc, registry, src, and logger must be non-nil.
func NewArenaHandler(svc ArenaService, registry *command.Registry, src dice.Source, lineDelay time.Duration, logger *zap.Logger) *ArenaHandler {
	return &ArenaHandler{
		arena:     svc,
		registry:  registry,
		src:       src,
		lineDelay: lineDelay,
		logger:    logger,
	}
}

// session is the per-connection state handed to each command.
type session struct {
	conn      *telnet.Conn
	requester string
}

func (s *session) say(text string) error { return s.conn.WriteLine(text) }

// HandleSession greets the client and dispatches commands until quit,
// disconnect, or cancellation. A client hang-up returns nil.
func (h *ArenaHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	s := &session{conn: conn, requester: requesterOf(conn.RemoteAddr())}

	if err := s.say(telnet.Colorize(telnet.Bold+telnet.BrightYellow, "Welcome to the FightBook arena.")); err != nil {
		return err
	}
	if err := s.say("Type " + telnet.Colorize(telnet.BrightCyan, "help") + " for commands."); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WritePrompt(prompt); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		cmd, ok := h.registry.Resolve(parsed.Command)
		if !ok {
			if err := s.say(RenderError(fmt.Sprintf("Unknown command %q. Type help for a list.", parsed.Command))); err != nil {
				return err
			}
			continue
		}
		if cmd.Handler == command.HandlerQuit {
			return s.say("You leave the arena.")
		}
		if err := h.dispatch(ctx, s, cmd, parsed); err != nil {
			return err
		}
	}
}

// dispatch runs one command. Arena failures are reported to the client;
// only connection errors are returned.
func (h *ArenaHandler) dispatch(ctx context.Context, s *session, cmd *command.Command, p command.ParseResult) error {
	var err error
	switch cmd.Handler {
	case command.HandlerHelp:
		err = s.say(strings.ReplaceAll(h.registry.HelpText(command.CategoryRoster, command.CategoryMatch, command.CategorySystem), "\n", "\r\n"))
	case command.HandlerRoster:
		err = h.roster(ctx, s)
	case command.HandlerLeaderboard:
		err = h.leaderboard(ctx, s)
	case command.HandlerHistory:
		err = h.history(ctx, s, p.Args)
	case command.HandlerStats:
		err = h.stats(ctx, s, p.RawArgs)
	case command.HandlerFight:
		err = h.fight(ctx, s, p.RawArgs)
	case command.HandlerRandom:
		err = h.random(ctx, s)
	case command.HandlerRegister:
		err = h.register(ctx, s, p.Args)
	case command.HandlerArchetypes:
		err = s.say(RenderArchetypes())
	default:
		err = s.say(RenderError("That command is not available here."))
	}

	var ue userError
	if errors.As(err, &ue) {
		h.logger.Debug("command rejected",
			zap.String("command", cmd.Name),
			zap.String("requester", s.requester),
			zap.Error(ue.cause),
		)
		return s.say(RenderError(ue.msg))
	}
	return err
}

// userError is an arena failure to be shown to the client.
type userError struct {
	msg   string
	cause error
}

func (e userError) Error() string { return e.msg }

func tell(msg string) error { return userError{msg: msg} }

// describe turns an arena error into the message a player sees.
func describe(err error) error {
	var (
		rl *arena.RateLimitError
		ve *fighter.ValidationError
		nt *arena.NameTakenError
		se *arena.SlotError
	)
	msg := "Something went wrong. Try again."
	switch {
	case errors.As(err, &rl):
		msg = rl.Message
	case errors.As(err, &ve):
		msg = ve.Error()
	case errors.As(err, &nt):
		msg = nt.Error()
	case errors.As(err, &se):
		msg = se.Error()
	case errors.Is(err, arena.ErrFighterNotFound):
		msg = "Fighter not found."
	case errors.Is(err, combat.ErrInvalidInvocation):
		msg = "A fighter cannot fight itself."
	}
	return userError{msg: msg, cause: err}
}

func (h *ArenaHandler) roster(ctx context.Context, s *session) error {
	list, err := h.arena.Fighters(ctx)
	if err != nil {
		return describe(err)
	}
	return s.say(RenderRoster(list))
}

func (h *ArenaHandler) leaderboard(ctx context.Context, s *session) error {
	board, err := h.arena.Leaderboard(ctx)
	if err != nil {
		return describe(err)
	}
	return s.say(RenderLeaderboard(board))
}

func (h *ArenaHandler) history(ctx context.Context, s *session, args []string) error {
	limit := historyDefault
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return tell("Usage: history [n]")
		}
		limit = n
	}
	fights, err := h.arena.RecentFights(ctx, limit)
	if err != nil {
		return describe(err)
	}
	return s.say(RenderHistory(fights))
}

func (h *ArenaHandler) stats(ctx context.Context, s *session, name string) error {
	if name == "" {
		return tell("Usage: stats <name>")
	}
	f, err := h.find(ctx, name)
	if err != nil {
		return err
	}
	return s.say(RenderFighter(f))
}

func (h *ArenaHandler) find(ctx context.Context, name string) (arena.Fighter, error) {
	f, err := h.arena.FindFighter(ctx, name)
	if errors.Is(err, arena.ErrFighterNotFound) {
		return arena.Fighter{}, userError{msg: fmt.Sprintf("No fighter named %q.", name), cause: err}
	}
	if err != nil {
		return arena.Fighter{}, describe(err)
	}
	return f, nil
}

func (h *ArenaHandler) fight(ctx context.Context, s *session, raw string) error {
	nameA, nameB, ok := command.SplitVersus(raw)
	if !ok {
		return tell("Usage: fight <a> vs <b>")
	}
	a, err := h.find(ctx, nameA)
	if err != nil {
		return err
	}
	b, err := h.find(ctx, nameB)
	if err != nil {
		return err
	}
	return h.run(ctx, s, a, b)
}

func (h *ArenaHandler) random(ctx context.Context, s *session) error {
	list, err := h.arena.Fighters(ctx)
	if err != nil {
		return describe(err)
	}
	if len(list) < 2 {
		return tell("At least two fighters must be registered.")
	}
	i := h.src.Intn(len(list))
	j := h.src.Intn(len(list) - 1)
	if j >= i {
		j++
	}
	return h.run(ctx, s, list[i], list[j])
}

func (h *ArenaHandler) run(ctx context.Context, s *session, a, b arena.Fighter) error {
	f, err := h.arena.StartFight(ctx, s.requester, a.ID, b.ID)
	if err != nil {
		return describe(err)
	}
	if err := s.conn.Play(ctx, RenderFightLog(f.Log, false), h.lineDelay); err != nil {
		return err
	}
	return s.say(RenderOutcome(f.Winner, f.Method, f.Round))
}

func (h *ArenaHandler) register(ctx context.Context, s *session, args []string) error {
	if len(args) < 2 {
		return tell("Usage: register <name> <archetype>")
	}
	name := strings.Join(args[:len(args)-1], " ")
	arch, err := fighter.LookupArchetype(args[len(args)-1])
	if err != nil {
		return userError{msg: err.Error(), cause: err}
	}
	meta := map[string]any{"source": "telnet", "archetype": arch.Name}
	f, err := h.arena.RegisterFighter(ctx, s.requester, name, arch.Raw(), meta)
	if err != nil {
		return describe(err)
	}
	return s.say(telnet.Colorf(telnet.Green, "%s joins the roster as a %s.", f.Name, arch.Name))
}

// requesterOf keys rate limits by client host.
func requesterOf(addr net.Addr) string {
	if addr == nil {
		return "telnet:unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	return "telnet:" + host
}
