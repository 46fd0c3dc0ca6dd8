// Package cli implements the busline command line.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/naveenspark/busline/internal/config"
	"github.com/naveenspark/busline/internal/logging"
	"github.com/naveenspark/busline/internal/session"
	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

// ErrNotLoggedIn is returned by commands that need a valid session.
var ErrNotLoggedIn = errors.New("not logged in")

// app carries what every command shares once flags and config are resolved.
type app struct {
	version string

	flagConfig   string
	flagAPIURL   string
	flagStore    string
	flagLogLevel string

	cfg     *config.Config
	logger  *slog.Logger
	store   session.Store
	manager *session.Manager
	guard   *session.Guard
	client  *client.Client
	closers []io.Closer
	reader  *bufio.Reader
}

// NewRootCmd creates the root cobra command for the busline CLI.
// Without a subcommand it starts the interactive client.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "busline",
		Short: "busline: search, book and manage bus tickets",
		Long:  "busline is a terminal client for the bus booking API. Run it without arguments for the interactive view.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flagConfig, "config", "", "Config file (default ~/.busline/config.yaml)")
	root.PersistentFlags().StringVar(&a.flagAPIURL, "api-url", "", "API base URL (or BUSLINE_API_URL env)")
	root.PersistentFlags().StringVar(&a.flagStore, "store", "", "Session store: file, sqlite or memory")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newSearchCmd(a),
		newTripCmd(a),
		newBookCmd(a),
		newBookingsCmd(a),
		newBookingCmd(a),
		newCancelCmd(a),
		newTicketCmd(a),
		newVersionCmd(a),
	)

	// Release the store and log file even when a command fails.
	cobra.OnFinalize(a.close)

	return root
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return err
	}
	if a.flagAPIURL != "" {
		cfg.APIURL = a.flagAPIURL
	}
	if a.flagStore != "" {
		cfg.Store = strings.ToLower(a.flagStore)
	}
	if a.flagLogLevel != "" {
		cfg.Log.Level = a.flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	level := logging.ParseLevel(cfg.Log.Level)
	if cmd == cmd.Root() {
		logger, closer, err := logging.NewFileLogger(level, cfg.Log.Format, cfg.StateDir)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closer)
		a.logger = logger
	} else {
		a.logger = logging.NewLoggerWithWriter(level, cfg.Log.Format, cmd.ErrOrStderr())
	}

	store, err := session.Open(cmd.Context(), cfg.Store, cfg.StateDir, a.logger)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, store)

	a.manager = session.NewManager(store, session.WithLogger(a.logger))
	a.guard = session.NewGuard(a.manager)
	a.client = client.New(cfg.APIURL, "",
		client.WithTimeout(cfg.Timeout()),
		client.WithLogger(a.logger),
	)
	a.logger.Debug("cli ready", "command", cmd.Name(), "api_url", cfg.APIURL, "store", cfg.Store)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close() //nolint:errcheck // best-effort cleanup
	}
	a.closers = nil
}

// authorize applies the route guard to a protected command. A denial leaves
// its notice for the next login.
func (a *app) authorize(ctx context.Context) (*client.Client, error) {
	d := a.guard.Check(ctx, domain.RoleUser)
	if !d.Allowed {
		if err := a.manager.PushNotice(ctx, d.Notice); err != nil {
			a.logger.Warn("store notice failed", "error", err)
		}
		return nil, fmt.Errorf("%w: %s Run 'busline login'", ErrNotLoggedIn, d.Notice)
	}
	return a.client.WithToken(d.Session.Token), nil
}

// apiFailure wraps err from an authorized call. A 401 means the server no
// longer accepts the token, so the session is cleared like an expired one.
func (a *app) apiFailure(ctx context.Context, what string, err error) error {
	if !client.IsStatus(err, http.StatusUnauthorized) {
		return fmt.Errorf("%s: %w", what, err)
	}
	a.logger.Info("token rejected", "op", what)
	if cerr := a.manager.Clear(ctx); cerr != nil {
		a.logger.Warn("clear session failed", "error", cerr)
	}
	if perr := a.manager.PushNotice(ctx, session.NoticeExpired); perr != nil {
		a.logger.Warn("store notice failed", "error", perr)
	}
	return fmt.Errorf("%w: %s Run 'busline login'", ErrNotLoggedIn, session.NoticeExpired)
}

// readLine reads one line from the command's input.
func (a *app) readLine(cmd *cobra.Command, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
	}
	if a.reader == nil {
		a.reader = bufio.NewReader(cmd.InOrStdin())
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a secret without echo when input is a terminal.
func (a *app) readPassword(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return a.readLine(cmd, prompt)
}

// confirm asks a yes/no question; anything but y/yes is no.
func (a *app) confirm(cmd *cobra.Command, question string) (bool, error) {
	answer, err := a.readLine(cmd, question+" [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
