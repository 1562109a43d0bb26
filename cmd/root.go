package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/bookbot/cmd/telegram"
	"github.com/lepinkainen/bookbot/internal/cache"
	"github.com/lepinkainen/bookbot/internal/catalog"
	"github.com/lepinkainen/bookbot/internal/chat"
	"github.com/lepinkainen/bookbot/internal/config"
	"github.com/lepinkainen/bookbot/internal/lookup"
	"github.com/lepinkainen/bookbot/internal/metrics"
	"github.com/lepinkainen/bookbot/internal/translate"
	"github.com/lepinkainen/bookbot/internal/tui"
)

// commandHandler runs chat commands for every front end.
type commandHandler interface {
	Run(ctx context.Context, command string, args []string, reply chat.Replier) error
	Handle(ctx context.Context, text string, reply chat.Replier) error
}

var (
	runBot       = telegram.Run
	runShell     = tui.Run
	serveMetrics = metrics.Serve
	newHandler   = newDispatcher

	stdout io.Writer = os.Stdout
)

// CLI represents the complete command structure for the bookbot application
type CLI struct {
	// Global flags
	Debug bool `help:"Enable debug logging"`

	// Cache flags
	CacheDB  string `help:"Path to cache SQLite database file (:memory: keeps nothing on disk)"`
	CacheTTL string `help:"Cache time-to-live duration (e.g., 1h)"`
	NoCache  bool   `help:"Disable the catalog response cache"`

	Bot    BotCmd    `cmd:"" help:"Run the Telegram bot"`
	Find   FindCmd   `cmd:"" help:"Find books by title"`
	Author AuthorCmd `cmd:"" help:"Find books by author"`
	Random RandomCmd `cmd:"" help:"Pick a random book"`
	Shell  ShellCmd  `cmd:"" help:"Chat with the bot in the terminal"`
	Cache  CacheCmd  `cmd:"" help:"Manage the catalog response cache"`
}

// BotCmd represents the bot command
type BotCmd struct {
	Workers     int    `help:"Number of messages handled concurrently (defaults to telegram.workers)"`
	MetricsAddr string `help:"Serve Prometheus metrics on this address, e.g. :9090 (defaults to metrics.addr)"`
}

// FindCmd represents the find command
type FindCmd struct {
	Title []string `arg:"" optional:"" help:"Book title"`
}

// AuthorCmd represents the author command
type AuthorCmd struct {
	Name []string `arg:"" optional:"" help:"Author name"`
}

// RandomCmd represents the random command
type RandomCmd struct{}

// ShellCmd represents the shell command
type ShellCmd struct{}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Delete cached responses of a catalog (googlebooks, openlibrary or all)"`
}

// Execute parses the command line and runs the selected command.
func Execute() {
	initLogging(os.Stdout, slog.LevelInfo)
	initConfig()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bookbot"),
		kong.Description("A Telegram bot that looks books up in Open Library and Google Books."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		initLogging(os.Stdout, slog.LevelDebug)
	}
	updateGlobalConfig(&cli)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run()
	closeCache()
	if err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Written before the env bindings so secrets never end up on disk.
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Warn("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	if err := viper.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.CacheDB != "" {
		viper.Set("cache.dbfile", cli.CacheDB)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoCache {
		config.SetCacheEnabled(false)
	}
}

func initLogging(w io.Writer, level slog.Level) {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

func closeCache() {
	if err := cache.ResetGlobalCache(); err != nil {
		slog.Warn("Failed to close cache", "error", err)
	}
}

// newDispatcher wires the catalogs configured in internal/config into a
// chat dispatcher.
func newDispatcher() commandHandler {
	tr := translate.Default()

	openLibrary := catalog.NewOpenLibrary(catalog.OpenLibraryOptions{
		BaseURL:         config.OpenLibraryURL,
		Timeout:         config.CatalogTimeout,
		FallbackTimeout: config.FallbackTimeout,
		Translator:      tr,
		UseCache:        config.CacheEnabled,
	})
	googleBooks := catalog.NewGoogleBooks(catalog.GoogleBooksOptions{
		BaseURL:    config.GoogleBooksURL,
		Timeout:    config.CatalogTimeout,
		APIKey:     config.GoogleBooksAPIKey,
		Translator: tr,
		UseCache:   config.CacheEnabled,
	})

	svc := lookup.New(lookup.Sources{
		Titles:         openLibrary,
		Authors:        googleBooks,
		FallbackAuthor: openLibrary,
		Ratings:        googleBooks,
	})
	return chat.NewDispatcher(svc)
}

// Run methods for each command

func (b *BotCmd) Run(ctx context.Context) error {
	workers := b.Workers
	if workers <= 0 {
		workers = config.TelegramWorkers
	}
	metricsAddr := b.MetricsAddr
	if metricsAddr == "" {
		metricsAddr = config.MetricsAddr
	}

	opts := telegram.Options{
		Token:       config.TelegramToken,
		Workers:     workers,
		PollTimeout: config.TelegramPollTimeout,
	}
	handler := newHandler()

	// The metrics server lives exactly as long as the bot.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, metricsAddr)
		})
	}
	g.Go(func() error {
		defer cancel()
		return runBot(gctx, opts, handler)
	})
	return g.Wait()
}

func (f *FindCmd) Run(ctx context.Context) error {
	return runOneShot(ctx, chat.CommandFind, f.Title)
}

func (a *AuthorCmd) Run(ctx context.Context) error {
	return runOneShot(ctx, chat.CommandAuthor, a.Name)
}

func (r *RandomCmd) Run(ctx context.Context) error {
	return runOneShot(ctx, chat.CommandRandom, nil)
}

func (s *ShellCmd) Run(ctx context.Context) error {
	// Log lines would tear through the full-screen console.
	initLogging(io.Discard, slog.LevelError)
	return runShell(ctx, newHandler())
}

// runOneShot runs a single chat command and prints every reply.
func runOneShot(ctx context.Context, command string, args []string) error {
	args = strings.Fields(strings.Join(args, " "))
	return newHandler().Run(ctx, command, args, func(_ context.Context, text string) error {
		_, err := fmt.Fprintln(stdout, text)
		return err
	})
}
