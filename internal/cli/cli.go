package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/fb-events/internal/browser"
	"github.com/pfrederiksen/fb-events/internal/config"
	"github.com/pfrederiksen/fb-events/internal/event"
	"github.com/pfrederiksen/fb-events/internal/extract"
	"github.com/pfrederiksen/fb-events/internal/filter"
	"github.com/pfrederiksen/fb-events/internal/logger"
	"github.com/pfrederiksen/fb-events/internal/metrics"
	"github.com/pfrederiksen/fb-events/internal/scraper"
	"github.com/pfrederiksen/fb-events/internal/server"
	"github.com/pfrederiksen/fb-events/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitStructure = 2 // a page no longer has the expected structure
)

type rootOptions struct {
	configPath string
	logLevel   string
	format     string
	fetchMode  string

	// fetcher replaces the configured fetcher when set.
	fetcher scraper.Fetcher
	stderr  io.Writer
}

// app is everything a subcommand needs, built from the configuration.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	scraper *scraper.Scraper
	close   func() error
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{stderr: os.Stderr})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fb-events",
		Short: "Scrape public Facebook events",
		Long: `A tool to scrape public Facebook event pages into structured events.
Lists the events of a page, scrapes single events, or serves both over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ParseFormat(opts.format)
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVar(&opts.format, "format", string(FormatText), "Output format: text, json or ics")
	flags.StringVar(&opts.fetchMode, "fetcher", "", "Page fetcher: browser or http (overrides config)")

	cmd.AddCommand(
		newProfileCmd(opts),
		newEventCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	var (
		sortOrder string
		when      string
		venue     string
		f         = filter.New()
	)

	cmd := &cobra.Command{
		Use:   "profile <name>",
		Short: "List every event on a page's events tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}
			if err := applyFilterFlags(f, when, venue); err != nil {
				return err
			}

			a, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown()

			profile := strings.TrimSpace(args[0])
			a.log.Info("Scraping profile", logger.Fields{"profile": profile})

			res, err := a.scraper.EventsForProfile(cmd.Context(), profile)
			if err != nil {
				return fmt.Errorf("scraping profile %s: %w", profile, err)
			}

			events := f.Apply(res.Events)
			if !f.IsEmpty() {
				a.log.Info("Filtered events", logger.Fields{
					"filter":  f.String(),
					"matched": len(events),
					"total":   len(res.Events),
				})
			}
			sortEvents(events, order)

			format, _ := ParseFormat(opts.format)
			return WriteOutput(cmd.OutOrStdout(), &OutputResult{
				ScrapedAt:  time.Now().UTC(),
				Profile:    res.Profile,
				Events:     events,
				EventCount: len(events),
			}, format)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sortOrder, "sort", "", "Sort events by date or title (default: page order)")
	flags.StringVar(&when, "when", "", "Only events starting in a date range, e.g. 'Mar 1-15', 'March' or '2026-03-01..2026-03-15'")
	flags.StringSliceVar(&f.Keywords, "search", nil, "Only events whose title or description contains one of these words")
	flags.StringSliceVar(&f.Cities, "city", nil, "Only events in one of these cities")
	flags.BoolVar(&f.WeekendsOnly, "weekends", false, "Only events starting on a Saturday or Sunday")
	flags.StringVar(&venue, "venue", "", "Only online or in-person events")
	flags.BoolVar(&f.SkipRepeating, "skip-repeating", false, "Leave out repeating events")

	return cmd
}

func newEventCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "event <id>...",
		Short: "Scrape one or more events by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := scraper.ValidateEventID(id); err != nil {
					return err
				}
			}

			a, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown()

			events := make([]*event.GenericEvent, 0, len(args))
			for _, id := range args {
				evt, err := a.scraper.Event(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("scraping event %s: %w", id, err)
				}
				events = append(events, evt)
			}

			format, _ := ParseFormat(opts.format)
			return WriteOutput(cmd.OutOrStdout(), &OutputResult{
				ScrapedAt:  time.Now().UTC(),
				Events:     events,
				EventCount: len(events),
			}, format)
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve events over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			srv := server.New(a.scraper, a.metrics.Handler(), a.log)
			return srv.ListenAndServe(cmd.Context(), a.cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func applyFilterFlags(f *filter.Filter, when, venue string) error {
	f.Location = time.Local

	if when != "" {
		from, to, err := filter.ParseDateRange(when, time.Now())
		if err != nil {
			return fmt.Errorf("invalid --when: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}

	switch strings.ToLower(venue) {
	case "":
	case "online":
		online := true
		f.Online = &online
	case "in-person":
		online := false
		f.Online = &online
	default:
		return fmt.Errorf("invalid --venue: %s (must be 'online' or 'in-person')", venue)
	}

	return nil
}

// setup loads the configuration and wires the scraper together.
func (o *rootOptions) setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.fetchMode != "" {
		cfg.Fetch.Mode = strings.ToLower(o.fetchMode)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := newLogger(cfg.Log, o.stderr)
	logger.SetDefault(log)

	cache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		close:   func() error { return nil },
	}

	fetcher := o.fetcher
	if fetcher == nil {
		switch cfg.Fetch.Mode {
		case config.FetchHTTP:
			fetcher = scraper.NewHTTPFetcher(cfg.Fetch.BaseURL, cfg.Fetch.UserAgent, cfg.Fetch.Timeout)
		default:
			d := browser.New(cfg.Browser, cfg.Fetch, log)
			fetcher = d
			a.close = d.Close
		}
	}

	a.scraper = scraper.New(fetcher,
		scraper.WithCache(cache),
		scraper.WithMetrics(a.metrics),
		scraper.WithLogger(log),
	)

	log.Debug("Configured", logger.Fields{
		"fetcher": cfg.Fetch.Mode,
		"cache":   cfg.Cache.Backend,
	})

	return a, nil
}

func (a *app) shutdown() {
	if err := a.close(); err != nil {
		a.log.Warn("Shutdown failed", logger.Fields{"error": err.Error()})
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *logger.Logger {
	level := logger.ParseLevel(cfg.Level)
	if cfg.Pretty {
		return logger.NewConsole(level, w)
	}
	return logger.New(level, w)
}

func newCache(ctx context.Context, cfg config.CacheConfig) (storage.Cache, error) {
	switch cfg.Backend {
	case config.CacheS3:
		c, err := storage.NewS3Cache(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return nil, fmt.Errorf("initializing s3 cache: %w", err)
		}
		return c, nil
	case config.CacheNone:
		return storage.NopCache{}, nil
	default:
		c, err := storage.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		return c, nil
	}
}

// exitCode maps an error from Execute to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, extract.ErrStructure):
		return ExitStructure
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
