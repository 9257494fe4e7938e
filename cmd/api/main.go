package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Roma7-7-7/readyword/internal/api"
	"github.com/Roma7-7-7/readyword/internal/config"
	dalsql "github.com/Roma7-7-7/readyword/internal/dal/sql"
	"github.com/Roma7-7-7/readyword/internal/game"
	"github.com/Roma7-7-7/readyword/internal/play"
	"github.com/Roma7-7-7/readyword/internal/progress"
	"github.com/Roma7-7-7/readyword/internal/schedule"
	"github.com/Roma7-7-7/readyword/internal/wordsource"
)

var (
	// Version is set via -ldflags at build time
	Version = "dev" //nolint:gochecknoglobals // must be global to be replaced at build time
	// BuildTime is set via -ldflags at build time
	BuildTime = "unknown" //nolint:gochecknoglobals // must be global to be replaced at build time
)

const shutdownTimeout = 15 * time.Second

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeDBMigrate
	exitCodeServerStart
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	go func() {
		<-sigs
		cancel()
	}()
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	_ = godotenv.Load()

	conf, err := config.NewAPI(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // ignore
		return exitCodeConfigParse
	}
	log := mustLogger(conf.Dev)

	db, err := dalsql.Open(ctx, conf.DBType(), conf.DB.URL)
	if err != nil {
		log.ErrorContext(ctx, "failed to open database", "driver", conf.DB.Driver, "error", err)
		return exitCodeDBConnect
	}
	defer db.Close()

	if err = dalsql.Migrate(ctx, db, conf.DBType(), log); err != nil {
		log.ErrorContext(ctx, "failed to migrate database", "error", err)
		return exitCodeDBMigrate
	}

	repo := dalsql.NewRepository(db, conf.DBType(), log)
	recorder := progress.NewRecorder(repo, conf.Game.RecordAttempts, conf.Game.RecordRetryDelay, log)
	manager := play.NewManager(recorder, log)
	defer manager.Close()
	games := play.NewService(repo, wordSource(conf, repo, log), manager, game.DefaultRand, log)

	go schedule.StartSessionReaper(ctx, conf.Game.ReapInterval, conf.Game.ReapAfter, manager, log)

	conf.BuildInfo.Version = Version
	conf.BuildInfo.BuildTime = BuildTime
	router := api.NewRouter(ctx, conf, api.Dependencies{
		Repo:   repo,
		DB:     db,
		Games:  games,
		Logger: log,
	})
	log.InfoContext(ctx, "starting api server",
		"version", Version,
		"build_time", BuildTime,
		"address", conf.Server.Addr,
		"db_driver", conf.DB.Driver,
	)

	server := &http.Server{
		ReadHeaderTimeout: conf.Server.ReadHeaderTimeout,
		Addr:              conf.Server.Addr,
		Handler:           router,
	}

	ln, err := net.Listen("tcp", conf.Server.Addr)
	if err != nil {
		log.ErrorContext(ctx, "failed to listen", "address", conf.Server.Addr, "error", err)
		return exitCodeServerStart
	}
	if err = serve(ctx, server, ln, shutdownTimeout, log); err != nil {
		log.ErrorContext(ctx, "failed to start api server", "error", err)
		return exitCodeServerStart
	}

	log.InfoContext(ctx, "api server is stopped")

	return exitCodeOK
}

// wordSource prefers Gemini when a key is configured and always falls back
// to the imported word bank.
func wordSource(conf *config.API, repo *dalsql.Repository, log *slog.Logger) wordsource.Source {
	bank := wordsource.NewBankSource(repo)
	if conf.Gemini.APIKey == "" {
		log.Warn("gemini api key is not set, serving words from the word bank only")
		return bank
	}

	gemini := wordsource.NewGeminiClient(
		&http.Client{Timeout: conf.Gemini.Timeout},
		conf.Gemini.APIKey,
		conf.Gemini.BaseURL,
		conf.Gemini.Model,
		conf.Gemini.FallbackModels,
		log,
	)
	return wordsource.NewChain(log, gemini, bank)
}

func mustLogger(dev bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	if dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}

// serve runs server on ln until ctx is done. It returns only after Shutdown
// has drained in-flight requests, so callers may release what handlers use.
func serve(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration, log *slog.Logger) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		cCtx, cCancel := context.WithTimeout(context.Background(), timeout)
		defer cCancel()

		if sErr := server.Shutdown(cCtx); sErr != nil {
			log.ErrorContext(cCtx, "failed to shutdown api server", "error", sErr)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}
