// Package cli implements the cycle-journal CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/cycle-journal/internal/clock"
	"github.com/rcliao/cycle-journal/internal/config"
	"github.com/rcliao/cycle-journal/internal/kv"
	"github.com/rcliao/cycle-journal/internal/logger"
	"github.com/rcliao/cycle-journal/internal/model"
	"github.com/rcliao/cycle-journal/internal/remote"
	"github.com/rcliao/cycle-journal/internal/store"
)

var (
	configPath  string
	dbPath      string
	backendFlag string
	nowFlag     string
	formatFlag  string
)

// stdout receives command output; tests swap it.
var stdout io.Writer = os.Stdout

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "cycle-journal",
	Short: "Cycle-aware wellbeing journal",
	Long:  "Track your cycle phase, daily mood, reflections and breathing rituals. Stored locally, or in Postgres per user.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CYCLE_JOURNAL_CONFIG or ~/.cycle-journal/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Local store path (overrides local.path)")
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Backend: local or remote (overrides backend)")
	RootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Pretend the current time is this RFC3339 time or YYYY-MM-DD date")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json, yaml or text")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("CYCLE_JOURNAL_CONFIG"); env != "" {
		return env
	}
	return config.DefaultPath("config.yaml")
}

// service is one opened store plus what must be released with it.
type service struct {
	cfg     *config.Config
	store   *store.Store
	clock   clock.Clock
	closers []func() error
}

func (s *service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}

// openService loads configuration and binds a Store to the configured
// backend. The backend is chosen once here for the life of the process.
func openService(cmd *cobra.Command) (*service, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Local.Path = dbPath
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk, err := newClock(nowFlag, loc)
	if err != nil {
		return nil, err
	}

	svc := &service{cfg: cfg, clock: clk}
	local, err := kv.Open(cfg.Local.Driver, cfg.Local.Path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	svc.closers = append(svc.closers, local.Close)

	var backend store.Backend
	switch cfg.Backend {
	case store.BackendRemote:
		userID, err := cfg.UserID()
		if err != nil {
			svc.Close()
			return nil, err
		}
		db, err := remote.Open(cmd.Context(), cfg.Remote.DatabaseURL)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, db.Close)
		if cfg.Remote.Migrate {
			if err := remote.Migrate(cmd.Context(), db, log); err != nil {
				svc.Close()
				return nil, err
			}
		}
		backend = store.NewRemoteBackend(remote.NewPostgres(db, log), userID, local, log,
			store.WithMaxAttempts(cfg.Sync.MaxAttempts),
			store.WithLocation(loc),
			store.WithNow(clk.Now))
	default:
		backend = store.NewLocalBackend(local, log)
	}

	svc.store = store.New(backend, store.WithClock(clk), store.WithLogger(log))
	log.Debug("store opened",
		slog.String("backend", cfg.Backend),
		slog.String("local_driver", cfg.Local.Driver))
	return svc, nil
}

// newClock returns the wall clock in loc, or a fixed clock when now is set.
func newClock(now string, loc *time.Location) (clock.Clock, error) {
	if now == "" {
		return clock.System{Loc: loc}, nil
	}
	if t, err := time.ParseInLocation(model.DayLayout, now, loc); err == nil {
		return clock.Fixed(t.Add(12 * time.Hour)), nil
	}
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return nil, fmt.Errorf("--now: want RFC3339 or YYYY-MM-DD, got %q", now)
	}
	return clock.Fixed(t.In(loc)), nil
}

func mustOpen(cmd *cobra.Command) *service {
	svc, err := openService(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	return svc
}

// dayFlag returns the --date flag, or the current day when unset.
func dayFlag(cmd *cobra.Command, svc *service) string {
	day, _ := cmd.Flags().GetString("date")
	if day == "" {
		return svc.store.Today()
	}
	if _, err := model.ParseDay(day); err != nil {
		exitErr("date", err)
	}
	return day
}

// output writes v in the selected format. text renders the text format;
// when nil, text falls back to JSON.
func output(v any, text func(w io.Writer)) {
	switch strings.ToLower(formatFlag) {
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			exitErr("encode yaml", err)
		}
		fmt.Fprint(stdout, string(b))
	case "text":
		if text != nil {
			text(stdout)
			return
		}
		fallthrough
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			exitErr("encode json", err)
		}
		fmt.Fprintln(stdout, string(b))
	}
}

// checkWrite exits on hard failures. A write that was kept for later
// (queued remotely or held in memory) is reported as a warning.
func checkWrite(msg string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, store.ErrRemoteWriteFailed) || errors.Is(err, store.ErrStorageUnavailable) {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", msg, err)
		return
	}
	exitErr(msg, err)
}

// textArg joins positional args, or reads piped stdin when there are none.
func textArg(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " "))
	}
	stat, _ := os.Stdin.Stat()
	if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return strings.TrimSpace(string(b))
	}
	return ""
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
