// Package cli is the menuadmin command line: a subcommand router over the
// catalog views, the session and the interactive screen.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Makepad-fr/menuadmin/internal/api"
	"github.com/Makepad-fr/menuadmin/internal/catalog"
	"github.com/Makepad-fr/menuadmin/internal/config"
	"github.com/Makepad-fr/menuadmin/internal/session"
	"github.com/Makepad-fr/menuadmin/internal/tui"
	"github.com/Makepad-fr/menuadmin/internal/ui"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors that map to exitUsage.
var errUsage = errors.New("usage")

func usagef(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, a...))
}

// Options wire the runner to its environment. Zero values use the process
// defaults.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	// Store overrides where the session token is kept.
	Store session.Store
	// Interactive runs the list screen. Defaults to tui.Run.
	Interactive func(ctx context.Context, views []catalog.View, opt tui.Options) error
}

type runner struct {
	opt    Options
	p      ui.Printer
	in     *bufio.Reader
	cfg    *config.Config
	level  *slog.LevelVar
	log    *slog.Logger
	sess   *session.Session
	client *api.Client
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	if opt.Getenv == nil {
		opt.Getenv = os.Getenv
	}
	if opt.Interactive == nil {
		opt.Interactive = tui.Run
	}
	r := &runner{
		opt:   opt,
		p:     ui.Printer{Out: opt.Stdout, Err: opt.Stderr},
		in:    bufio.NewReader(opt.Stdin),
		level: new(slog.LevelVar),
	}

	fs := pflag.NewFlagSet("menuadmin", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "", "config file (default ~/.menuadmin/config.yaml)")
	baseURL := fs.String("base-url", "", "API base url, e.g. http://localhost:8080/api")
	logLevel := fs.String("log-level", "", "debug|info|warn|error")
	theme := fs.String("theme", "", "classic|neon|mono")
	timeout := fs.Duration("timeout", 0, "per request timeout")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			r.help()
			return exitOK
		}
		r.p.Fail(err.Error())
		return exitUsage
	}
	args = fs.Args()
	if len(args) == 0 {
		r.help()
		return exitUsage
	}

	if err := r.setup(*cfgPath, *baseURL, *logLevel, *theme, *timeout); err != nil {
		r.p.Fail(err.Error())
		return exitError
	}

	err := r.dispatch(ctx, args[0], args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		r.p.Fail(strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
		return exitUsage
	default:
		r.p.Fail(err.Error())
		return exitError
	}
}

func (r *runner) setup(cfgPath, baseURL, logLevel, theme string, timeout time.Duration) error {
	path, required := cfgPath, cfgPath != ""
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(r.opt.Getenv)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if theme != "" {
		cfg.Theme = theme
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	r.cfg = cfg

	lvl, _ := config.ParseLevel(cfg.LogLevel)
	r.level.Set(lvl)
	r.log = slog.New(slog.NewTextHandler(r.opt.Stderr, &slog.HandlerOptions{Level: r.level}))
	if !ui.SetTheme(cfg.Theme) {
		r.log.Warn("unknown theme, using classic", "theme", cfg.Theme, "known", ui.Themes())
	}

	store := r.opt.Store
	if store == nil {
		store, err = defaultStore(cfg)
		if err != nil {
			return err
		}
	}
	r.sess = session.New(store)
	if err := r.sess.Restore(); err != nil {
		r.log.Warn("could not restore session", "error", err)
	}

	r.client, err = api.NewClient(api.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Tokens:    r.sess,
		Logger:    r.log,
		UserAgent: "menuadmin",
	})
	return err
}

func defaultStore(cfg *config.Config) (session.Store, error) {
	path, err := session.DefaultFilePath()
	if err != nil {
		return nil, err
	}
	file := session.FileStore{Path: path}
	if !cfg.UseKeyring {
		return file, nil
	}
	return session.FallbackStore{
		Primary:   session.KeyringStore{Service: "menuadmin", User: "default"},
		Secondary: file,
	}, nil
}

func (r *runner) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "-h", "--help":
		r.help()
		return nil
	case "resources":
		return r.resources()
	case "ls":
		return r.list(ctx, args)
	case "toggle":
		return r.toggle(ctx, args)
	case "rm":
		return r.remove(ctx, args)
	case "summary":
		return r.summary(ctx, args)
	case "tui":
		return r.interactive(ctx, args)
	case "auth":
		return r.auth(ctx, args)
	}
	r.help()
	return usagef("unknown subcommand: %s", cmd)
}

func (r *runner) help() {
	fmt.Fprint(r.opt.Stderr, `menuadmin - admin console for the food ordering platform

Usage:
  menuadmin [--config f] [--base-url u] [--log-level l] [--theme t] <subcommand> [args]

Subcommands:
  resources                          List known resources and their endpoints
  ls <resource> [--search s]         List records (--group <field> splits by a flag)
  toggle <resource> <id> <field>     Flip a boolean field
  rm <resource> <id>                 Delete a record
  summary                            Counts for every resource
  tui [resource...]                  Interactive list (space toggles, d deletes, / searches)
  auth <login|logout|status|whoami>  Session management

Resources taking parameters (restaurant-items) need --restaurant <id>.

Examples:
  menuadmin auth login --email admin@example.com
  menuadmin ls items --search pizza
  menuadmin toggle items 12 on_homePage
  menuadmin rm coupons 3f2a...
`)
}

// flags returns a subcommand flag set with the shared resource parameters.
func flags(name string) (*pflag.FlagSet, map[string]*string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	params := map[string]*string{
		"restaurant": fs.String("restaurant", "", "restaurant id for restaurant-items"),
	}
	return fs, params
}

func values(params map[string]*string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if *v != "" {
			out[k] = *v
		}
	}
	return out
}

func (r *runner) open(name string, params map[string]string, log *slog.Logger) (catalog.View, error) {
	if _, ok := r.cfg.Resources[name]; !ok {
		return nil, usagef("unknown resource %q (known: %s)", name, strings.Join(r.cfg.ResourceNames(), ", "))
	}
	if log == nil {
		log = r.log
	}
	v, err := catalog.Open(name, r.cfg, r.client, catalog.Options{Params: params, Logger: log})
	if err != nil {
		return nil, usagef("%v", err)
	}
	return v, nil
}
