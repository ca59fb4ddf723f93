// Package framework is the extension runtime shared by the coach command-line
// and terminal interfaces. A process builds a Context, registers plugins (each
// plugin registers commands, table descriptors, and resources), calls Startup
// to open the database and create tables, and then routes command strings to
// handlers with Execute.
//
// The whole runtime is single-threaded and synchronous: one logical owner (the
// running command or the UI event loop) touches the Context at a time, and
// commands run to completion before the next is accepted.
package framework

import (
	"fmt"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// HandlerFunc processes one registered command. It receives the matched (leaf)
// cobra command, so a handler registered on a command with subcommands can
// switch on cmd.Name(). Errors propagate verbatim to the Execute caller.
type HandlerFunc func(c *Context, cmd *cobra.Command, args []string) (CommandResponse, error)

// Plugin extends a Context. Build runs exactly once, synchronously, when the
// plugin is added; registration order is caller-controlled, so a plugin that
// depends on a resource registered by an earlier plugin must document that
// ordering and return an error if the resource is missing.
type Plugin interface {
	Build(c *Context) error
}

// CommandResponse is the result of a successful command: optional text that
// the CLI prints verbatim.
type CommandResponse struct {
	text    string
	hasText bool
}

// NewResponse creates a response with display text. The zero value is a
// response without text.
func NewResponse(text string) CommandResponse {
	return CommandResponse{text: text, hasText: true}
}

// Text returns the response text, if any.
func (r CommandResponse) Text() (string, bool) {
	return r.text, r.hasText
}

type commandEntry struct {
	cmd     *cobra.Command
	handler HandlerFunc
}

// Context is the process-wide application state: the resource registry, the
// ordered command list, the table descriptor set, and (after Startup) the
// database connection. Create one per process or test; mutate it only through
// registration calls before Startup and handler invocations after.
type Context struct {
	resources registry
	commands  []commandEntry
	tables    []*TableConfig

	inMemoryDB bool
	dataDir    string
	logger     *zap.Logger
}

// New creates an empty Context with no plugins, commands, or tables.
func New() *Context {
	return &Context{
		resources: newRegistry(),
		logger:    zap.NewNop(),
	}
}

// SetLogger replaces the context's logger. Defaults to a no-op logger.
func (c *Context) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// Logger returns the context's logger.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// InMemoryDB controls whether Startup opens the database in memory instead of
// on disk. Useful for tests; defaults to false.
func (c *Context) InMemoryDB(inMemory bool) {
	c.inMemoryDB = inMemory
}

// SetDataDir overrides the directory holding the database file. Defaults to
// the platform data directory resolved at Startup.
func (c *Context) SetDataDir(dir string) {
	c.dataDir = dir
}

// AddPlugin registers a plugin and runs its Build immediately. A Build error
// aborts registration and propagates to the caller.
func (c *Context) AddPlugin(p Plugin) error {
	if err := p.Build(c); err != nil {
		return fmt.Errorf("building plugin %T: %w", p, err)
	}
	c.logger.Debug("registered plugin", zap.String("plugin", fmt.Sprintf("%T", p)))
	return nil
}

// AddCommand registers a command and its handler. The handler is invoked when
// Execute matches the command (or one of its subcommands).
func (c *Context) AddCommand(cmd *cobra.Command, handler HandlerFunc) error {
	c.commands = append(c.commands, commandEntry{cmd: cmd, handler: handler})
	c.logger.Debug("registered command", zap.String("command", cmd.Name()))
	return nil
}

// AddTable registers a table descriptor. Duplicate table names are a
// configuration error.
func (c *Context) AddTable(tc *TableConfig) error {
	for _, existing := range c.tables {
		if existing.Name == tc.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateTable, tc.Name)
		}
	}
	c.tables = append(c.tables, tc)
	c.logger.Debug("registered table", zap.String("table", tc.Name))
	return nil
}

// Tables returns the registered table descriptors in registration order.
func (c *Context) Tables() []*TableConfig {
	return c.tables
}

// Startup opens the database connection and runs every registered table
// setup. Call it after all plugins are added; the connection is stored as a
// resource and owned by the registry for the life of the process.
func (c *Context) Startup() error {
	var db DB
	var err error
	if c.inMemoryDB {
		db, err = openMemoryDB(c.tables)
	} else {
		db, err = openDefaultDB(c.dataDir, c.tables)
	}
	if err != nil {
		return err
	}
	AddResource(c, db)
	c.logger.Info("startup complete",
		zap.Int("tables", len(c.tables)),
		zap.Bool("in_memory", c.inMemoryDB))
	return nil
}

// Execute tokenizes commandStr with shell-like quoting, matches it against the
// registered command tree, and runs the one matching handler with a mutable
// reference to this context. Unmatched input returns ErrUnknownCommand; a
// handler error propagates unmodified.
func (c *Context) Execute(commandStr string) (CommandResponse, error) {
	tokens, err := shlex.Split(commandStr)
	if err != nil {
		return CommandResponse{}, fmt.Errorf("%w: %s", ErrUnknownCommand, err)
	}

	var response CommandResponse
	root := &cobra.Command{
		Use:           "coach",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, entry := range c.commands {
		resetFlags(entry.cmd)
		c.attachHandler(entry.cmd, entry.handler, &response)
		root.AddCommand(entry.cmd)
	}

	// Resolve before running so an unrecognized first token surfaces as
	// ErrUnknownCommand instead of cobra's own parse error.
	target, _, err := root.Find(tokens)
	if err != nil || target == root {
		return CommandResponse{}, fmt.Errorf("%w: %q", ErrUnknownCommand, commandStr)
	}

	root.SetArgs(tokens)
	c.logger.Info("executing command", zap.String("command", commandStr))
	if err := root.Execute(); err != nil {
		return CommandResponse{}, err
	}
	return response, nil
}

// resetFlags restores every flag set on a previous Execute to its default.
// Registered commands are long-lived, so without this a later invocation
// that omits a flag would observe the earlier value and required-flag
// validation would pass vacuously.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// attachHandler wires handler into every leaf of the command tree. A parent
// command with subcommands and no handler of its own rejects bare invocation
// rather than silently printing help.
func (c *Context) attachHandler(cmd *cobra.Command, handler HandlerFunc, response *CommandResponse) {
	subs := cmd.Commands()
	if len(subs) == 0 {
		cmd.RunE = func(matched *cobra.Command, args []string) error {
			r, err := handler(c, matched, args)
			if err != nil {
				return err
			}
			*response = r
			return nil
		}
		return
	}
	cmd.RunE = func(matched *cobra.Command, args []string) error {
		return fmt.Errorf("%w: subcommand not recognized", ErrUnknownCommand)
	}
	for _, sub := range subs {
		c.attachHandler(sub, handler, response)
	}
}
