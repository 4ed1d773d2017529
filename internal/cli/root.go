// Package cli is the command-line front end: one cobra subcommand per desk
// command plus the interactive desk and the server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarydesk/internal/app"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/desk"
	"github.com/mrlokans/librarydesk/internal/entrypoint"
	"github.com/mrlokans/librarydesk/internal/logging"
)

type runner struct {
	version    string
	loadConfig func() *config.Config
	cfg        *config.Config

	databasePath string
	signInLog    string
}

type Option func(*runner)

// WithConfig replaces environment configuration with cfg.
func WithConfig(cfg *config.Config) Option {
	return func(r *runner) {
		r.loadConfig = func() *config.Config { return cfg }
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string, opts ...Option) *cobra.Command {
	r := &runner{version: version, loadConfig: config.NewConfig}
	for _, opt := range opts {
		opt(r)
	}

	root := &cobra.Command{
		Use:           "librarydesk",
		Short:         "Library catalog, membership, staff and sign-in desk",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&r.databasePath, "database-path", "", "sqlite database file (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&r.signInLog, "signin-log", "", "sign-in log file (overrides SIGNIN_LOG_PATH)")

	root.AddCommand(
		r.serveCommand(),
		r.bookCommand(),
		r.memberCommand(),
		r.membershipCommand(),
		r.staffCommand(),
		r.signInCommand(),
		r.deskCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	root := NewRootCommand(version)
	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case IsOperationError(err):
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}

func (r *runner) setup(cmd *cobra.Command) error {
	if r.cfg == nil {
		r.cfg = r.loadConfig()
	}
	if r.databasePath != "" {
		r.cfg.Database.Path = r.databasePath
	}
	if r.signInLog != "" {
		r.cfg.SignIn.LogPath = r.signInLog
	}
	logging.Setup(r.cfg.Logging.Level, r.cfg.Logging.Format, cmd.ErrOrStderr())
	return r.cfg.Database.Validate()
}

// withApp opens the application for the duration of fn.
func (r *runner) withApp(fn func(a *app.App) error) error {
	a, err := app.New(r.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (r *runner) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the background task queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(r.cfg, r.version)
		},
	}
}

// describedError shows the desk rendering of an operation error while
// keeping the original for errors.Is.
type describedError struct {
	err error
}

func (e describedError) Error() string { return desk.Describe(e.err) }
func (e describedError) Unwrap() error { return e.err }

// dispatch runs one desk command with a fresh session and prints its result.
func (r *runner) dispatch(cmd *cobra.Command, c desk.Command, form desk.Form) error {
	return r.withApp(func(a *app.App) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := a.Desk.Dispatch(ctx, &desk.Session{}, c, form)
		if err != nil {
			return describedError{err: err}
		}
		render(cmd.OutOrStdout(), res)
		return nil
	})
}

// IsOperationError reports whether err came from a library operation
// rather than from argument parsing or startup.
func IsOperationError(err error) bool {
	var d describedError
	return errors.As(err, &d)
}
