// Package cli is the kanby command line: the interactive board by default,
// plus scriptable subcommands over the same data file.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"kanby/internal/config"
	"kanby/internal/format"
	"kanby/internal/logging"
	"kanby/internal/store"
)

// Version is reported by --version; release builds set it with -ldflags.
var Version = "dev"

type App struct {
	ConfigPath string
	DataFile   string
	LogFile    string
	LogLevel   string
	NoColor    bool
	PrettyJSON bool
	Format     string

	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "kanby",
		Short:         "Terminal kanban board",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Open the interactive board
  kanby

  # Scriptable commands
  kanby tasks add "Write docs" --priority high
  kanby tasks move 1f2e3d4c --column Done
  kanby export --render
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.teardown()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: $KANBY_CONFIG or ~/.config/kanby/config.toml)")
	cmd.PersistentFlags().StringVar(&app.DataFile, "data-file", "", "Board data file (default: kanby_data.json)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Append logs to this file")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colour")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KANBY_FORMAT", "text"), "Output format (text|json)")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup loads the config and applies flag overrides: defaults < file < env < flags.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.DataFile != "" {
		cfg.DataFile = app.DataFile
	}
	if app.LogFile != "" {
		cfg.Log.File = app.LogFile
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if app.NoColor {
		cfg.UI.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg

	level, _ := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		lg, closer, err := logging.OpenFile(cfg.Log.File, level)
		if err != nil {
			return err
		}
		app.logger, app.logCloser = lg, closer
	} else if cmd.Root() == cmd {
		// The board owns the terminal; without a log file it stays quiet.
		app.logger = logging.Discard()
	} else {
		if app.LogLevel == "" {
			level = max(level, log.WarnLevel)
		}
		app.logger = logging.Console(cmd.ErrOrStderr(), level)
	}
	for _, k := range cfg.Unknown {
		app.logger.Warn("unknown config key", "key", k, "file", cfg.Path)
	}
	return nil
}

func (app *App) teardown() {
	if app.logCloser != nil {
		_ = app.logCloser.Close()
		app.logCloser = nil
	}
}

func (app *App) store() store.Store {
	return store.New(app.cfg.DataFile, app.cfg.StoreDefaults())
}

func (app *App) history() (store.History, bool) {
	p := app.cfg.HistoryPath()
	return store.History{Path: p}, p != ""
}

// openSession loads the board for a command. The caller must Close it.
func (app *App) openSession() (*store.Session, error) {
	opts := []store.SessionOption{store.WithLogger(app.logger)}
	if h, ok := app.history(); ok {
		opts = append(opts, store.WithHistory(h))
	}
	sess, err := store.OpenSession(app.store(), opts...)
	if err != nil {
		if store.IsCorruption(err) {
			app.logger.Error("data file is corrupt; it was left untouched", "path", app.cfg.DataFile, "err", err)
		}
		return nil, err
	}
	return sess, nil
}

// withSession runs fn against an open session and closes it afterwards.
func (app *App) withSession(fn func(*store.Session) error) error {
	sess, err := app.openSession()
	if err != nil {
		return err
	}
	ferr := fn(sess)
	if cerr := sess.Close(); cerr != nil && ferr == nil {
		return cerr
	}
	return ferr
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// Main runs the command line and returns the process exit code: 0 on success
// (including a clean interrupt), 1 on any error.
func Main(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err.Error())
		return 1
	}
	return 0
}
