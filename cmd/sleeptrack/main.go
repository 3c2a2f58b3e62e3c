package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sleeptrack/internal/bootstrap"
	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/platform/config"
	apperrors "sleeptrack/internal/platform/errors"
)

const timeLayout = "2006-01-02 15:04:05"

type globalFlags struct {
	dataDir  string
	locale   string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "sleeptrack",
		Short:         "Track sleep sessions and rate how they went",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default ~/.sleeptrack)")
	root.PersistentFlags().StringVar(&flags.locale, "locale", "", "message locale, e.g. en-US or de-DE")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(newStartCmd(flags))
	root.AddCommand(newStopCmd(flags))
	root.AddCommand(newRateCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newClearCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.New(flags.dataDir)
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(flags.locale) != "" {
		cfg.Locale = flags.locale
	}
	if strings.TrimSpace(flags.logLevel) != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadApp(flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(flags *globalFlags, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(flags)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newStartCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start tracking a sleep session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.CLI.Start(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: #%d at=%s\n", out.ID, out.StartTime.In(time.Local).Format(timeLayout))
				return nil
			})
		},
	}
}

func newStopCmd(flags *globalFlags) *cobra.Command {
	var quality int
	stopCmd := &cobra.Command{
		Use:   "stop [--quality N]",
		Short: "Stop the open session and optionally rate it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rateAfter := cmd.Flags().Changed("quality")
			if rateAfter {
				if err := validateQuality(quality); err != nil {
					return err
				}
			}
			return withApp(flags, func(app *bootstrap.App) error {
				id, ok, err := app.CLI.Stop(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no session in progress")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session stopped: #%d\n", id)
				if !rateAfter {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rate it with: sleeptrack rate %d <0-5>\n", id)
					return nil
				}
				return rate(cmd, app, id, quality)
			})
		},
	}
	stopCmd.Flags().IntVar(&quality, "quality", 0, "rate the stopped session (0..5)")
	return stopCmd
}

func newRateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <session-id> <quality>",
		Short: "Rate a session from 0 (very bad) to 5 (excellent)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: session id %q", apperrors.ErrInvalidInput, args[0])
			}
			quality, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: quality %q", apperrors.ErrInvalidInput, args[1])
			}
			if err := validateQuality(quality); err != nil {
				return err
			}
			return withApp(flags, func(app *bootstrap.App) error {
				return rate(cmd, app, id, quality)
			})
		},
	}
}

// validateQuality keeps command-line ratings on the 0..5 scale the screens offer.
func validateQuality(quality int) error {
	if !domain.ValidQuality(quality) {
		return fmt.Errorf("%w: quality %d outside %d..%d", apperrors.ErrInvalidInput, quality, domain.QualityMin, domain.QualityMax)
	}
	return nil
}

func rate(cmd *cobra.Command, app *bootstrap.App, id int64, quality int) error {
	rated, err := app.CLI.Rate(cmd.Context(), id, quality)
	if err != nil {
		return err
	}
	if !rated {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session #%d not found, nothing rated\n", id)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session rated: #%d quality=%d\n", id, quality)
	return nil
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print all recorded sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				text, err := app.CLI.History(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is being tracked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				state, err := app.CLI.Status(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if cur := state.Current; cur != nil {
					_, _ = fmt.Fprintf(out, "tracking: #%d since=%s\n", cur.ID, cur.StartTime.In(time.Local).Format(timeLayout))
				} else {
					_, _ = fmt.Fprintln(out, "tracking: none")
				}
				_, _ = fmt.Fprintf(out, "sessions: %d\n", len(state.History))
				_, _ = fmt.Fprintf(out, "actions: start=%t stop=%t clear=%t\n", state.StartVisible, state.StopVisible, state.ClearVisible)
				return nil
			})
		},
	}
}

func newClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				if err := app.CLI.Clear(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.Printer.Sprintf("tracker.cleared"))
				return nil
			})
		},
	}
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	var metricsAddr string
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				addr := metricsAddr
				if addr == "" {
					addr = app.Config.MetricsAddr
				}
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				if addr != "" {
					if err := app.ServeMetrics(ctx, addr); err != nil {
						return err
					}
				}
				return bootstrap.RunTUI(ctx, app)
			})
		},
	}
	tuiCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	return tuiCmd
}
