// Package commands implements the taskboard command tree.
package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/taskboard/internal/config"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// Global carries process-wide dependencies into every command.
type Global struct {
	Out      io.Writer
	Now      func() time.Time
	Location *time.Location
}

// NewGlobal returns the defaults used by main.
func NewGlobal() *Global {
	return &Global{Out: os.Stdout, Now: time.Now, Location: time.Local}
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"taskboard.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	Ephemeral bool             `help:"Keep tasks in memory only (nothing is read or written)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Add     AddCmd     `cmd:"" help:"Create a task"`
	Edit    EditCmd    `cmd:"" help:"Change the title, description or deadline of a task"`
	Done    DoneCmd    `cmd:"" help:"Mark tasks as completed"`
	Undo    UndoCmd    `cmd:"" help:"Mark completed tasks as pending again"`
	Rm      RmCmd      `cmd:"" help:"Delete a task"`
	Ls      LsCmd      `cmd:"" default:"1" help:"List tasks using the stored filter"`
	Show    ShowCmd    `cmd:"" help:"Show one task"`
	Filter  FilterCmd  `cmd:"" help:"Show or change the list filter (all, pending, completed)"`
	Export  ExportCmd  `cmd:"" help:"Export the task list as Markdown, HTML or JSON"`
	History HistoryCmd `cmd:"" help:"Show recorded task activity"`
	Watch   WatchCmd   `cmd:"" help:"Reload on external changes and report overdue tasks"`

	cfg *config.Config `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// LoadConfig loads the configuration once and reconfigures logging from it.
// --verbose always wins over the configured level.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Ephemeral {
		cfg.Storage.Backend = config.BackendMemory
		cfg.History.Enabled = false
		cfg.Metrics.Enabled = false
	}
	c.cfg = cfg
	slog.SetDefault(newLogger(cfg.Logging, c.Verbose))
	return cfg, nil
}

func newLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// shortIDLen is the id prefix shown in listings.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveID maps a full id or a unique id prefix to a task id.
func resolveID(store state.Reader, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.ValidationError("task id is required").Build()
	}
	if store.Get(ref).IsSome() {
		return ref, nil
	}

	var matches []string
	for _, t := range store.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.NotFoundError("task").WithContext("id", ref).Build()
	case 1:
		return matches[0], nil
	default:
		return "", errors.ValidationError("task id prefix is ambiguous").
			WithContext("id", ref).
			WithContext("matches", len(matches)).
			Build()
	}
}

// lookup resolves ref and returns the task.
func lookup(store state.Reader, ref string) (task.Task, error) {
	id, err := resolveID(store, ref)
	if err != nil {
		return task.Task{}, err
	}
	t, ok := store.Get(id).Get()
	if !ok {
		return task.Task{}, errors.NotFoundError("task").WithContext("id", ref).Build()
	}
	return t, nil
}
