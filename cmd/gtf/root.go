package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/config"
	"github.com/rezkam/gtf/internal/query"
	"github.com/rezkam/gtf/internal/storage/backend"
)

// errNotSaved makes the process exit non-zero when the local write failed.
var errNotSaved = errors.New("change was not saved")

// app carries the per-invocation state shared by commands.
type app struct {
	v   *viper.Viper
	now func() time.Time
}

// session is an opened backend and the service over it.
type session struct {
	cfg     *config.CLIConfig
	backend *backend.Backend
	service *tasks.Service
	palette *query.Palette
}

func newRootCmd(now func() time.Time) *cobra.Command {
	a := &app{v: viper.New(), now: now}
	a.v.SetEnvPrefix("GTF")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "gtf",
		Short: "Task dashboard",
		Long: `gtf edits the task dashboard document.

The document is read from the remote store when credentials are configured
(GTF_GITHUB_TOKEN and GTF_GITHUB_REPO for GitHub), falling back to the local
file. Every change is written to the local file and, best effort, to the
remote store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.Bool("json", false, "output JSON")
	flags.String("local-path", "", "local document file (GTF_LOCAL_PATH)")
	flags.String("local-backend", "", "local store: fs or sqlite (GTF_LOCAL_BACKEND)")
	flags.String("remote-backend", "", "remote store: github, gcs, postgres or none (GTF_REMOTE_BACKEND)")
	flags.String("timezone", "", "zone that decides today (GTF_TIMEZONE)")
	flags.Bool("local-only", false, "never contact the remote store")
	flags.BoolP("verbose", "v", false, "log storage activity")
	for _, name := range []string{"json", "local-path", "local-backend", "remote-backend", "timezone", "local-only", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.doneCmd(true),
		a.doneCmd(false),
		a.rescheduleCmd(),
		a.editCmd(),
		a.reorderCmd(),
		a.departmentsCmd(),
		a.labelCmd(),
		a.suggestCmd(),
		a.remindCmd(),
		a.remindersCmd(),
		a.statsCmd(),
		a.statusCmd(),
		a.historyCmd(),
	)
	return root
}

// loadConfig reads the environment and overlays flags set on the command line.
func (a *app) loadConfig() (*config.CLIConfig, error) {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return nil, err
	}

	if a.v.IsSet("local-path") && a.v.GetString("local-path") != "" {
		cfg.Storage.LocalPath = a.v.GetString("local-path")
	}
	if a.v.IsSet("local-backend") && a.v.GetString("local-backend") != "" {
		cfg.Storage.LocalBackend = a.v.GetString("local-backend")
	}
	if a.v.IsSet("remote-backend") && a.v.GetString("remote-backend") != "" {
		cfg.Storage.Remote.Backend = a.v.GetString("remote-backend")
	}
	if a.v.GetBool("local-only") {
		cfg.Storage.Remote.Backend = config.RemoteNone
	}
	if a.v.IsSet("timezone") && a.v.GetString("timezone") != "" {
		cfg.App.Timezone = a.v.GetString("timezone")
	}

	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Remote.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// withSession opens the configured stores for the duration of fn.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}
	palette, err := query.LoadPalette(cfg.App.PaletteFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := backend.Open(ctx, cfg.Storage, backend.Options{Logger: a.logger(cmd)})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer b.Close()

	return fn(ctx, &session{
		cfg:     cfg,
		backend: b,
		service: tasks.NewService(b.Store, tasks.Config{Now: a.now, Location: loc}),
		palette: palette,
	})
}

func (a *app) jsonOutput() bool {
	return a.v.GetBool("json")
}
