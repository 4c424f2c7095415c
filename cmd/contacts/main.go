package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/smileynet/contacts"
	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/csvsource"
	"github.com/smileynet/contacts/internal/logging"
	"github.com/smileynet/contacts/internal/session"
	"github.com/smileynet/contacts/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command.
type Globals struct {
	Config string `help:"Read this config file instead of the user and project layers." type:"path" placeholder:"FILE"`
}

// CLI is the top-level command structure for contacts.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Add     AddCmd           `cmd:"" help:"Add one contact and print the session list."`
	Import  ImportCmd        `cmd:"" help:"Import contacts from a CSV file."`
	Session SessionCmd       `cmd:"" help:"Start an interactive contact session."`
}

// loadConfig loads .env, then either the explicit config file or layered
// config from user and project paths, then env overrides.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfig reads path alone when set. An explicit file must exist.
func readConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadLayered(
			os.ExpandEnv("$HOME/.config/contacts/config.yaml"),
			".contacts/config.yaml",
		)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config.Load(path)
}

// setup loads config and builds the diagnostic logger.
func setup(g *Globals) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("config loaded", zap.String("env", cfg.Env), zap.String("import_path", cfg.Import.Path))
	return cfg, logger, nil
}

// rowOptions maps import config onto CSV reader options.
func rowOptions(cfg *config.Config, header bool) csvsource.Options {
	return csvsource.Options{
		HasHeader:        header || cfg.Import.HasHeader,
		DefaultFirstName: cfg.Import.DefaultFirstName,
		DefaultLastName:  cfg.Import.DefaultLastName,
	}
}

// --- Add command ---

// AddCmd adds a single contact. Empty arguments are passed through so the
// store performs validation.
type AddCmd struct {
	FirstName   string `arg:"" help:"First name."`
	LastName    string `arg:"" help:"Last name."`
	PhoneNumber string `arg:"" help:"Phone number (any format)."`
}

// Run executes the add command.
func (a *AddCmd) Run(g *Globals) error {
	_, logger, err := setup(g)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return a.run(os.Stdout, session.New(session.WithLogger(logger)))
}

// run adds the contact to sess and prints the list, enabling testable wiring.
func (a *AddCmd) run(w io.Writer, sess *session.Session) error {
	if err := sess.Add(a.FirstName, a.LastName, a.PhoneNumber); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	tui.RenderPlain(w, sess.Contacts())
	return nil
}

// --- Import command ---

// ImportCmd loads a CSV file into a fresh session and prints the result.
type ImportCmd struct {
	Path   string `arg:"" optional:"" help:"CSV file to import (default: import.path from config, falling back to the bundled sample)."`
	Header bool   `help:"Treat the first record as a header." default:"false"`
}

// Run executes the import command.
func (c *ImportCmd) Run(g *Globals) error {
	cfg, logger, err := setup(g)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	path := c.Path
	useSample := false
	if path == "" {
		path = cfg.Import.Path
		useSample = true
	}
	fsys, name := importSource(path, useSample)

	rows, err := csvsource.ReadFile(fsys, name, rowOptions(cfg, c.Header))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	sess := session.New(session.WithLogger(logger))
	return c.run(os.Stdout, sess, rows)
}

// importSource resolves path to a filesystem and file name. When useSample
// is set, a missing local file falls back to the embedded sample data.
func importSource(path string, useSample bool) (fs.FS, string) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if useSample {
		return contacts.OverlayFS(filepath.ToSlash(dir), contacts.Data), name
	}
	return os.DirFS(dir), name
}

// run imports rows into sess, printing warnings for rejected rows and the
// final list. Returns an error wrapping contact.ErrInvalidContact if any row
// was rejected.
func (c *ImportCmd) run(w io.Writer, sess *session.Session, rows []csvsource.Row) error {
	rep := sess.Import(rows)
	for _, rj := range rep.Rejected {
		_, _ = fmt.Fprintf(w, "warning: line %d: %v\n", rj.Row.Line, rj.Err)
	}
	_, _ = fmt.Fprintf(w, "Imported %d of %d contact(s)\n", rep.Added, len(rows))
	tui.RenderPlain(w, sess.Contacts())

	if err := rep.Err(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// --- Session command ---

// SessionCmd starts an interactive session. The TUI is used when stdout is a
// terminal; otherwise contacts are read line by line from stdin.
type SessionCmd struct {
	NoTUI bool `help:"Force plain text input even if stdout is a TTY." default:"false"`
}

// Run builds real dependencies and starts the session display.
func (s *SessionCmd) Run(g *Globals) error {
	cfg, logger, err := setup(g)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		Reader:     os.Stdin,
		ForcePlain: s.NoTUI || cfg.Display.Plain,
		Rows:       rowOptions(cfg, false),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return s.run(ctx, display, session.New(session.WithLogger(logger)))
}

// run drives the display with the session, enabling testable wiring.
func (s *SessionCmd) run(ctx context.Context, display tui.Display, sess *session.Session) error {
	if err := display.Run(ctx, sess); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitInvalid = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, contact.ErrInvalidContact) {
		return exitInvalid
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("Manage an in-memory contact list for one session."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
