// Package main is the vitrina CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/vitrina/internal/cli"
	"github.com/hyperjump/vitrina/internal/config"
	"github.com/hyperjump/vitrina/internal/fetch"
	"github.com/hyperjump/vitrina/internal/fetcher"
	"github.com/hyperjump/vitrina/internal/server"
	"github.com/hyperjump/vitrina/internal/watcher"
	"github.com/hyperjump/vitrina/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/vitrina/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config yields the built-in defaults.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "item":
		runItem()
	case "index":
		runIndex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("vitrina version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, reloads, retries)")
	fixtures := fs.String("fixtures", "", "catalog JSON file (overrides mock.fixtures_path)")
	startupDelay := fs.Duration("startup-delay", -1, "warm-up gap during which the API answers HTML (overrides mock.startup_delay)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *fixtures != "" {
		cfg.Mock.FixturesPath = *fixtures
	}
	if *startupDelay >= 0 {
		cfg.Mock.StartupDelay = *startupDelay
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	stats, err := components.Indexer.LoadFile(context.Background(), cfg.Mock.FixturesPath)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.String("path", cfg.Mock.FixturesPath), zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.Int("listings", stats.Listings),
		zap.Int("products", stats.Products),
		zap.Int("derived", stats.Derived),
	)

	var watchSvc *watcher.Watcher
	if cfg.Mock.WatchFixtures && cfg.Mock.FixturesPath != "" {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		idx := components.Indexer
		watchSvc = watcher.NewWatcher(
			[]string{cfg.Mock.FixturesPath},
			func(path string) {
				stats, err := idx.LoadFile(context.Background(), path)
				if err != nil {
					logger.Warn("fixture reload failed", zap.String("path", path), zap.Error(err))
					return
				}
				logger.Info("fixtures reloaded", zap.String("path", path), zap.Int("listings", stats.Listings))
			},
			watchOpts...,
		)
		if err := watchSvc.Start(context.Background()); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srvOpts := []server.Option{server.WithLogger(logger)}
	if watchSvc != nil {
		srvOpts = append(srvOpts, server.WithWatcher(watchSvc))
	}
	srv := server.NewServer(components.Engine, components.Indexer, cfg, srvOpts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: vitrina search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
While the mock API is warming up it answers HTML; the client retries up to --retries
times with a growing delay (base-delay, 2x, 3x) before giving up.

Examples:
  vitrina search iphone
  vitrina search "iphone 13"                 # same as iphone 13
  vitrina search --output compact iphone
  vitrina search --output xlsx iphone > resultados.xlsx
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// clientFlags are shared by the commands that talk to the API through the fetchers.
type clientFlags struct {
	configPath *string
	serverURL  *string
	retries    *int
	baseDelay  *time.Duration
	output     *string
	debug      *bool
}

func addClientFlags(fs *flag.FlagSet) *clientFlags {
	return &clientFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		serverURL:  fs.String("server", "", "API base URL (default: client.base_url from config)"),
		retries:    fs.Int("retries", -1, "retries while the API is warming up (default: client.max_retries)"),
		baseDelay:  fs.Duration("base-delay", 0, "backoff unit between retries (default: client.base_delay)"),
		output:     fs.String("output", "text", "output format: text, compact, json or xlsx"),
		debug:      fs.Bool("debug", false, "enable debug logging to stderr"),
	}
}

// clientSetup is the resolved client configuration for one command.
type clientSetup struct {
	cfg    *config.Config
	unit   *fetch.Unit
	format cli.OutputFormat
	logger *zap.Logger
}

func (f *clientFlags) resolve() (*clientSetup, error) {
	cfg, _, err := loadConfig(*f.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if *f.serverURL != "" {
		cfg.Client.BaseURL = *f.serverURL
	}
	if *f.retries >= 0 {
		cfg.Client.MaxRetries = *f.retries
	}
	if *f.baseDelay > 0 {
		cfg.Client.BaseDelay = *f.baseDelay
	}
	format, err := cli.ParseFormat(*f.output)
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if cfg.Debug || *f.debug {
		if logger, err = utils.NewLogger(true); err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}
	return &clientSetup{
		cfg:    cfg,
		unit:   newUnit(cfg.Client, logger),
		format: format,
		logger: logger,
	}, nil
}

// newUnit builds the fetch unit from the client config.
func newUnit(c config.ClientConfig, logger *zap.Logger) *fetch.Unit {
	return fetch.NewUnit(
		fetch.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
		fetch.WithLogger(logger),
		fetch.WithMaxRetries(c.MaxRetries),
		fetch.WithBaseDelay(c.BaseDelay),
	)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	flags := addClientFlags(fs)
	limit := fs.Int("limit", 0, "number of results (default: client.search_limit)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	setup, err := flags.resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer setup.logger.Sync()
	if *limit > 0 {
		setup.cfg.Client.SearchLimit = *limit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := searchOnce(ctx, setup, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search interrupted: %v\n", err)
		os.Exit(130)
	}
	if err := cli.WriteSearchResults(os.Stdout, state, setup.format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if state.Error != "" {
		os.Exit(1)
	}
}

// searchOnce runs one search through a SearchFetcher and returns its committed state.
// The loading view is rendered to stderr in text mode.
func searchOnce(ctx context.Context, setup *clientSetup, query string) (fetcher.SearchState, error) {
	sf := fetcher.NewSearchFetcher(setup.unit, setup.cfg.Client.BaseURL,
		fetcher.WithSearchLimit(setup.cfg.Client.SearchLimit),
		fetcher.WithLogger(setup.logger),
	)
	if setup.format == cli.OutputText {
		unsubscribe := sf.Subscribe(func(s fetcher.SearchState) {
			if s.IsLoading {
				_ = cli.WriteSearchResults(os.Stderr, s, cli.OutputText)
			}
		})
		defer unsubscribe()
	}
	select {
	case <-sf.Search(ctx, query):
		return sf.State(), nil
	case <-ctx.Done():
		sf.Clear()
		return fetcher.SearchState{}, ctx.Err()
	}
}

func runItem() {
	fs := flag.NewFlagSet("item", flag.ExitOnError)
	flags := addClientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: vitrina item [flags] <id> [id...]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	setup, err := flags.resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer setup.logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	states, err := fetchDetails(ctx, setup, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup interrupted: %v\n", err)
		os.Exit(130)
	}
	failed := false
	for i, state := range states {
		if i > 0 && setup.format != cli.OutputJSON {
			fmt.Println()
		}
		if err := cli.WriteProduct(os.Stdout, state, setup.format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		failed = failed || state.Error != ""
	}
	if failed {
		os.Exit(1)
	}
}

// fetchDetails looks up every id concurrently, one DetailFetcher each, sharing the unit.
// States are returned in the order of ids.
func fetchDetails(ctx context.Context, setup *clientSetup, ids []string) ([]fetcher.DetailState, error) {
	states := make([]fetcher.DetailState, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			df := fetcher.NewDetailFetcher(setup.unit, setup.cfg.Client.BaseURL, fetcher.WithLogger(setup.logger))
			select {
			case <-df.FetchDetail(gctx, id):
				states[i] = df.State()
				return nil
			case <-gctx.Done():
				df.Clear()
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: vitrina index [flags] <catalog.json>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	stats, err := components.Indexer.LoadFile(context.Background(), path)
	if err != nil {
		fmt.Printf("Index failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d listings and %d products (%d derived) from %s\n", stats.Listings, stats.Products, stats.Derived, path)
}

func printUsage() {
	fmt.Println(`vitrina - Product search client and mock catalog API

Usage:
  vitrina server [flags]              Start the mock catalog API
  vitrina search [flags] <query>      Search products
  vitrina item [flags] <id> [id...]   Show product details
  vitrina index [flags] <file>        Load a catalog JSON file into storage
  vitrina status [flags]              Show catalog and server status
  vitrina version                     Show version
  vitrina help                        Show this help

Server Flags:
  --config string          Config file path (default: /usr/local/etc/vitrina/config.yaml)
  --debug                  Enable debug logging
  --fixtures string        Catalog JSON file (default: embedded catalog)
  --startup-delay duration Warm-up gap during which /api answers HTML

Search / Item Flags:
  --server string          API base URL (default: http://localhost:8080)
  --retries int            Retries while the API is warming up (default: 3)
  --base-delay duration    Backoff unit between retries (default: 200ms)
  --output string          text, compact, json or xlsx (default: text)
  --limit int              Number of results, search only (default: 10)

Status Flags:
  --server string          API base URL
  --output string          text or json (default: text)

Examples:
  vitrina server --startup-delay 2s
  vitrina search iphone
  vitrina search --output json "iphone 13"
  vitrina item MLA998877665
  vitrina index ./catalog.json
  vitrina status`)
}
