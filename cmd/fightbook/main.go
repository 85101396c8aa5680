// Package main provides the fightbook command-line tool: create, validate,
// and fight YAML fighter profiles locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/config"
	"github.com/cory-johannsen/fightbook/internal/frontend/handlers"
	"github.com/cory-johannsen/fightbook/internal/frontend/telnet"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
	"github.com/cory-johannsen/fightbook/internal/genesis"
	"github.com/cory-johannsen/fightbook/internal/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: fightbook <command> [flags] [args]

commands:
  init <name> [archetype]        write a new profile (default archetype: balanced)
  fight <a.yaml> <b.yaml>        simulate a match between two profiles
  validate <file.yaml>           check a profile against the registration rules
  genesis <name> <description>   draft a profile with an Anthropic model
  hash-token <token>             print the bcrypt hash for arena.admin_token_hash
  version                        print the version
`

// errUsage signals bad arguments; main exits 2 without a stack of messages.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "fightbook: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return runInit(rest, stdout, stderr)
	case "fight":
		return runFight(rest, stdout, stderr)
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "genesis":
		return runGenesis(rest, stdout, stderr)
	case "hash-token":
		return runHashToken(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "fightbook %s\n", version)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
	return errUsage
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse handles flags placed before or after positional arguments.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	return strings.Trim(slugRE.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func runInit(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("init", stderr)
	dir := fs.String("dir", ".", "directory to write the profile into")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 || len(pos) > 2 {
		fmt.Fprintln(stderr, "usage: fightbook init <name> [archetype] [-dir path]")
		return errUsage
	}

	name, err := fighter.SanitizeName(pos[0])
	if err != nil {
		return err
	}
	archName := "balanced"
	if len(pos) == 2 {
		archName = pos[1]
	}
	arch, err := fighter.LookupArchetype(archName)
	if err != nil {
		return err
	}

	path := filepath.Join(*dir, slug(name)+".yaml")
	pf := &fighter.ProfileFile{ID: uuid.NewString(), Name: name, Archetype: arch.Name, Stats: arch.Raw()}
	if err := fighter.WriteProfileFile(path, pf); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created %s (%s)\n", path, arch.Name)
	return nil
}

func runFight(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("fight", stderr)
	seed := fs.Uint64("seed", 0, "seed for a reproducible match (0 = random)")
	plain := fs.Bool("plain", false, "disable ANSI colour")
	delay := fs.Duration("delay", 0, "pause between log lines")
	verbose := fs.Bool("v", false, "log dice rolls to stderr")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		fmt.Fprintln(stderr, "usage: fightbook fight <a.yaml> <b.yaml> [-seed N] [-plain] [-delay d]")
		return errUsage
	}

	logger, err := observability.NewCLILogger(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	profiles := make([]fighter.Profile, 2)
	for i, path := range pos {
		pf, err := fighter.LoadProfileFile(path)
		if err != nil {
			return err
		}
		if pf.ID == "" {
			pf.ID = uuid.NewString()
		}
		profiles[i] = pf.Profile()
	}

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	start := time.Now()
	res, err := combat.NewEngine(src, logger).Simulate(profiles[0], profiles[1])
	if err != nil {
		return err
	}
	logger.Debug("match simulated", zap.Duration("elapsed", time.Since(start)))

	for _, line := range handlers.RenderFightLog(res.Log, *plain) {
		fmt.Fprintln(stdout, line)
		if *delay > 0 {
			time.Sleep(*delay)
		}
	}
	outcome := handlers.RenderOutcome(res.Winner, string(res.Method), res.FinishRound)
	if *plain {
		outcome = telnet.StripANSI(outcome)
	}
	fmt.Fprintln(stdout, outcome)
	return nil
}

func runValidate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("validate", stderr)
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fmt.Fprintln(stderr, "usage: fightbook validate <file.yaml>")
		return errUsage
	}
	pf, err := fighter.LoadProfileFile(pos[0])
	if err != nil {
		return err
	}
	report, err := pf.Validate()
	if err != nil {
		var ve *fighter.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(stdout, "%s: %s\n", pos[0], ve.Message)
			for _, d := range ve.Details {
				fmt.Fprintf(stdout, "  - %s\n", d)
			}
		}
		return err
	}
	fmt.Fprintf(stdout, "%s: ok (%d stats, %g/%g budget points)\n", pos[0], report.Counted, report.Spent, fighter.StatBudget)
	return nil
}

func runGenesis(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("genesis", stderr)
	configPath := fs.String("config", "configs/dev.yaml", "path to configuration file")
	dir := fs.String("dir", ".", "directory to write the profile into")
	timeout := fs.Duration("timeout", time.Minute, "model request timeout")
	verbose := fs.Bool("v", false, "verbose logging")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 2 {
		fmt.Fprintln(stderr, "usage: fightbook genesis <name> <description...> [-config path] [-dir path]")
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewCLILogger(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen, err := genesis.New(cfg.Genesis, logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	reg, err := gen.Generate(ctx, pos[0], strings.Join(pos[1:], " "))
	if err != nil {
		return err
	}
	path := filepath.Join(*dir, slug(reg.Name)+".yaml")
	pf := &fighter.ProfileFile{ID: uuid.NewString(), Name: reg.Name, Stats: reg.Stats}
	if err := fighter.WriteProfileFile(path, pf); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created %s\n", path)
	return nil
}

func runHashToken(args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: fightbook hash-token <token>")
		return errUsage
	}
	hash, err := arena.HashToken(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}
