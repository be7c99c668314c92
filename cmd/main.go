package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/config"
	"tidbyt.dev/gtfsview/downloader"
	"tidbyt.dev/gtfsview/model"
	"tidbyt.dev/gtfsview/parse"
	"tidbyt.dev/gtfsview/storage"
)

// State shared by all commands, set up before any of them run.
type cli struct {
	configPath     string
	dbDriver       string
	db             string
	strictCalendar bool
	workers        int
	verbose        bool
	headers        []string
	metricsFile    string
	cacheDir       string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *parse.Metrics
	storage  storage.Storage
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:               "gtfs",
		Short:             "GTFS feed tool",
		Long:              "Loads GTFS static feeds and queries their schedules",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	flags.StringVarP(&c.dbDriver, "db-driver", "", "", "Feed storage: memory, sqlite or postgres")
	flags.StringVarP(&c.db, "db", "", "", "SQLite directory or Postgres DSN")
	flags.BoolVarP(&c.strictCalendar, "strict-calendar", "", false, "Honor calendar.txt start and end dates")
	flags.IntVarP(&c.workers, "workers", "w", 0, "Tables loaded in parallel (0 for no limit)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output")
	flags.StringSliceVarP(&c.headers, "header", "H", []string{}, "HTTP header on the form <key>:<value>")
	flags.StringVarP(&c.metricsFile, "metrics-file", "", "", "Write load metrics here on exit")
	flags.StringVarP(&c.cacheDir, "cache-dir", "", "", "Keep downloaded feeds in this directory")

	rootCmd.AddCommand(
		c.visitsCmd(),
		c.eventsCmd(),
		c.describeCmd(),
		c.boundsCmd(),
		c.servicesCmd(),
		c.departuresCmd(),
		c.stopsCmd(),
		c.directionsCmd(),
		c.importCmd(),
		c.feedsCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		cfg, err = config.Load(c.configPath)
		if err != nil {
			return err
		}
	}

	// Flags override the file
	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		cfg.Storage.Driver = c.dbDriver
	}
	if flags.Changed("db") {
		if cfg.Storage.Driver == config.DriverPostgres {
			cfg.Storage.DSN = c.db
		} else {
			cfg.Storage.Directory = c.db
		}
	}
	if flags.Changed("strict-calendar") {
		cfg.StrictCalendar = c.strictCalendar
	}
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = c.cacheDir
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger

	c.registry = prometheus.NewRegistry()
	c.metrics, err = parse.NewMetrics(c.registry)
	if err != nil {
		return errors.Wrap(err, "registering metrics")
	}

	return nil
}

func (c *cli) teardown() error {
	if c.storage != nil {
		if err := c.storage.Close(); err != nil {
			return err
		}
	}
	if c.metricsFile != "" {
		if err := prometheus.WriteToTextfile(c.metricsFile, c.registry); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	c.logger.Sync()
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log level")
	}

	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}

func (c *cli) options() gtfs.Options {
	return gtfs.Options{
		StrictCalendar: c.cfg.StrictCalendar,
		Logger:         c.logger,
		Workers:        c.cfg.Workers,
		Metrics:        c.metrics,
	}
}

func (c *cli) openStorage() (storage.Storage, error) {
	if c.storage != nil {
		return c.storage, nil
	}

	var err error
	switch s := c.cfg.Storage; s.Driver {
	case config.DriverSQLite:
		c.storage, err = storage.NewSQLiteStorage(storage.SQLiteConfig{
			OnDisk:    s.Directory != "",
			Directory: s.Directory,
		})
	case config.DriverPostgres:
		c.storage, err = storage.NewPSQLStorage(s.DSN, false)
	default:
		c.storage = storage.NewMemoryStorage()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s storage", c.cfg.Storage.Driver)
	}

	return c.storage, nil
}

func (c *cli) manager() (*gtfs.Manager, error) {
	s, err := c.openStorage()
	if err != nil {
		return nil, err
	}
	m := gtfs.NewManager(s, c.options())
	m.RefreshInterval = c.cfg.RefreshInterval

	if c.cfg.CacheDir != "" {
		fs, err := downloader.NewFilesystem(c.cfg.CacheDir, c.logger)
		if err != nil {
			return nil, err
		}
		m.Downloader = fs
		m.DownloadCacheTTL = c.cfg.RefreshInterval
	}

	return m, nil
}

func parseHeaders(headers []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", header)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Feeds imported from disk are stored under their absolute path.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}

// Resolves a feed argument: the name of a configured feed, a
// directory, a zip archive, an http(s) URL or a file:// URL of an
// imported archive.
func (c *cli) source(arg string) (string, map[string]string, error) {
	headers := map[string]string{}
	source := arg
	if feed, found := c.cfg.Feed(arg); found {
		source = feed.Source
		for k, v := range feed.Headers {
			headers[k] = v
		}
	}

	flagHeaders, err := parseHeaders(c.headers)
	if err != nil {
		return "", nil, errors.Wrap(err, "invalid header")
	}
	for k, v := range flagHeaders {
		headers[k] = v
	}

	return source, headers, nil
}

func (c *cli) loadFeed(ctx context.Context, arg string) (*gtfs.Feed, error) {
	source, headers, err := c.source(arg)
	if err != nil {
		return nil, err
	}

	if isURL(source) || strings.HasPrefix(source, "file://") {
		m, err := c.manager()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(source, "file://") {
			return m.LoadFeed(source, time.Now())
		}
		return m.Load(ctx, source, headers, time.Now())
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.Wrap(err, "opening feed")
	}
	if info.IsDir() {
		return gtfs.Load(source, c.options())
	}

	buf, err := os.ReadFile(source)
	if err != nil {
		return nil, errors.Wrap(err, "reading feed")
	}
	return gtfs.LoadZip(buf, c.options())
}

// Accepts YYYYMMDD and YYYY-MM-DD.
func parseDate(s string) (model.Date, error) {
	return model.ParseDate(strings.ReplaceAll(s, "-", ""))
}
