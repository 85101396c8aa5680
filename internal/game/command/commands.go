// Package command provides the arena command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryRoster = "roster"
	CategoryMatch  = "match"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerHelp        = "help"
	HandlerRoster      = "roster"
	HandlerLeaderboard = "leaderboard"
	HandlerHistory     = "history"
	HandlerStats       = "stats"
	HandlerFight       = "fight"
	HandlerRandom      = "random"
	HandlerRegister    = "register"
	HandlerArchetypes  = "archetypes"
	HandlerQuit        = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "fight <a> vs <b>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the session handler.
	Handler string
}

// BuiltinCommands returns all built-in arena commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "roster", Aliases: []string{"fighters", "ls"}, Usage: "roster", Help: "List registered fighters", Category: CategoryRoster, Handler: HandlerRoster},
		{Name: "leaderboard", Aliases: []string{"ranks", "top"}, Usage: "leaderboard", Help: "Show fighters ranked by wins", Category: CategoryRoster, Handler: HandlerLeaderboard},
		{Name: "stats", Aliases: []string{"st", "record"}, Usage: "stats <name>", Help: "Show a fighter's attributes and career record", Category: CategoryRoster, Handler: HandlerStats},
		{Name: "register", Aliases: []string{"reg"}, Usage: "register <name> <archetype>", Help: "Register a fighter from an archetype preset", Category: CategoryRoster, Handler: HandlerRegister},
		{Name: "archetypes", Aliases: []string{"arch"}, Usage: "archetypes", Help: "List the archetype presets", Category: CategoryRoster, Handler: HandlerArchetypes},

		{Name: "fight", Aliases: []string{"f", "match"}, Usage: "fight <a> vs <b>", Help: "Run a match between two registered fighters", Category: CategoryMatch, Handler: HandlerFight},
		{Name: "random", Aliases: []string{"rnd"}, Usage: "random", Help: "Run a match between two random fighters", Category: CategoryMatch, Handler: HandlerRandom},
		{Name: "history", Aliases: []string{"recent", "hist"}, Usage: "history [n]", Help: "Show recent fight results", Category: CategoryMatch, Handler: HandlerHistory},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the arena", Category: CategorySystem, Handler: HandlerQuit},
	}
}
