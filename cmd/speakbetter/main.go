// Command speakbetter is the main entry point for the SpeakBetter
// pronunciation practice server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/speakbetter/speakbetter/internal/config"
	"github.com/speakbetter/speakbetter/internal/feedback"
	"github.com/speakbetter/speakbetter/internal/health"
	"github.com/speakbetter/speakbetter/internal/observe"
	"github.com/speakbetter/speakbetter/internal/progress"
	progresspg "github.com/speakbetter/speakbetter/internal/progress/postgres"
	"github.com/speakbetter/speakbetter/internal/resilience"
	"github.com/speakbetter/speakbetter/internal/server"
	"github.com/speakbetter/speakbetter/internal/wordlist"
	"github.com/speakbetter/speakbetter/pkg/provider/stt"
	sttmock "github.com/speakbetter/speakbetter/pkg/provider/stt/mock"
	oaistt "github.com/speakbetter/speakbetter/pkg/provider/stt/openai"
	"github.com/speakbetter/speakbetter/pkg/provider/stt/whisper"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "speakbetter: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "speakbetter: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The level lives in a LevelVar so a config reload can adjust it without
	// swapping the handler.
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("speakbetter starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "speakbetter",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise observability", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			slog.Warn("observability shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Transcription provider ────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := buildProvider(cfg, reg)
	if err != nil {
		slog.Error("failed to create transcription provider", "name", cfg.Provider.Name, "err", err)
		return 1
	}

	// A circuit breaker in front of the provider sheds load fast when the
	// backend is down instead of stalling every upload on a timeout.
	providerName := cfg.Provider.Name
	if providerName == "" {
		providerName = "mock"
	}
	provider = resilience.NewSTTFallback(provider, providerName, resilience.FallbackConfig{})

	// ── Progress store ────────────────────────────────────────────────────────
	store, storeCheck, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open progress store", "backend", cfg.Storage.Backend, "err", err)
		return 1
	}
	defer closeStore()

	ledger := progress.NewLedger(store)
	words := wordlist.New(cfg.Practice.Words)

	// Seed the review-queue gauge from persisted state.
	if queued, err := ledger.ReviewQueue(ctx, words.Words()); err == nil && len(queued) > 0 {
		metrics.ReviewQueueSize.Add(ctx, int64(len(queued)))
	}

	// ── HTTP API ──────────────────────────────────────────────────────────────
	healthHandler := health.New(version,
		health.Checker{Name: "store", Check: storeCheck},
		health.Checker{Name: "provider", Check: func(context.Context) error {
			if provider == nil {
				return errors.New("no transcription provider configured")
			}
			return nil
		}},
	)

	srv := server.New(server.Params{
		Provider:     provider,
		ProviderName: providerName,
		Language:     cfg.Provider.Language,
		Ledger:       ledger,
		Words:        words,
		Picker:       feedback.NewPicker(nil),
		Metrics:      metrics,
		Health:       healthHandler,
		StoreBackend: string(cfg.Storage.Backend),
		FocusLimit:   cfg.Practice.FocusLimit,
	})

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if !d.HasChanges() {
			return
		}
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.WordsChanged {
			srv.SetWordList(wordlist.New(d.NewWords))
		}
		if d.FocusLimitChanged {
			srv.SetFocusLimit(d.NewFocusLimit)
		}
	})
	if err != nil {
		slog.Error("failed to start config watcher", "err", err)
		return 1
	}
	defer watcher.Stop()

	printStartupSummary(cfg)

	// ── Serve ─────────────────────────────────────────────────────────────────
	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", listenAddr)
		var err error
		if cfg.Server.TLS != nil {
			err = httpServer.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires the transcription backends that ship with
// SpeakBetter into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		var opts []oaistt.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaistt.WithBaseURL(entry.BaseURL))
		}
		return oaistt.New(apiKey, entry.Model, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Language != "" {
			opts = append(opts, whisper.WithLanguage(entry.Language))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	// The mock backend transcribes nothing; it exists so the server can run
	// end to end without credentials.
	reg.RegisterSTT("mock", func(config.ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{}, nil
	})

	for _, name := range config.ValidProviderNames {
		slog.Debug("registered provider", "name", name)
	}
}

// buildProvider instantiates the configured transcription provider. An empty
// provider name falls back to the mock backend with a warning.
func buildProvider(cfg *config.Config, reg *config.Registry) (stt.Provider, error) {
	name := cfg.Provider.Name
	if name == "" {
		slog.Warn("no transcription provider configured, using mock backend")
		return &sttmock.Provider{}, nil
	}

	p, err := reg.CreateSTT(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("create stt provider %q: %w", name, err)
	}
	slog.Info("provider created", "name", name, "model", cfg.Provider.Model)
	return p, nil
}

// ── Store wiring ──────────────────────────────────────────────────────────────

// buildStore opens the configured progress store and returns it together
// with a readiness check and a close function.
func buildStore(ctx context.Context, cfg *config.Config) (progress.Store, func(context.Context) error, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pg, err := progresspg.NewStore(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("progress store opened", "backend", "postgres")
		return pg, pg.Ping, func() { pg.Close() }, nil

	case config.StorageMemory:
		slog.Info("progress store opened", "backend", "memory")
		store := progress.NewMemStore()
		check := func(ctx context.Context) error {
			_, err := store.Load(ctx)
			return err
		}
		return store, check, noop, nil

	default: // file is the default backend
		path := cfg.Storage.Path
		if path == "" {
			path = "progress.json"
		}
		store := progress.NewFileStore(path)
		check := func(ctx context.Context) error {
			_, err := store.Load(ctx)
			return err
		}
		slog.Info("progress store opened", "backend", "file", "path", path)
		return store, check, noop, nil
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       SpeakBetter — startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Provider", providerLabel(cfg.Provider))
	printRow("Storage", storageLabel(cfg.Storage))
	printRow("Words", fmt.Sprintf("%d configured", wordCount(cfg)))
	printRow("Listen addr", listenLabel(cfg.Server))
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(label, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s : %-19s ║\n", label, value)
}

func providerLabel(p config.ProviderEntry) string {
	if p.Name == "" {
		return "(mock)"
	}
	if p.Model != "" {
		return p.Name + " / " + p.Model
	}
	return p.Name
}

func storageLabel(s config.StorageConfig) string {
	switch s.Backend {
	case config.StoragePostgres:
		return "postgres"
	case config.StorageMemory:
		return "memory"
	default:
		path := s.Path
		if path == "" {
			path = "progress.json"
		}
		return "file: " + path
	}
}

func listenLabel(s config.ServerConfig) string {
	addr := s.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	if s.TLS != nil {
		return addr + " (tls)"
	}
	return addr
}

func wordCount(cfg *config.Config) int {
	if len(cfg.Practice.Words) > 0 {
		return len(cfg.Practice.Words)
	}
	return len(wordlist.DefaultWords)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
