package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/violet-vault/backend/internal/controllers/healthz"
	v1 "github.com/violet-vault/backend/internal/controllers/v1"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/notify"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/query"
	"github.com/violet-vault/backend/internal/router"
	"github.com/violet-vault/backend/internal/store"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		log.Fatal().Msg("environment variable API_URL must be set")
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		log.Fatal().Err(err).Msg("environment variable API_URL is not a valid URL")
	}

	// Create data directory
	dataDir := "data"
	if d, ok := os.LookupEnv("DATA_DIR"); ok {
		dataDir = d
	}

	err = os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	s, err := store.Connect(filepath.Join(dataDir, "violet-vault.db"))
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheTTL := 5 * time.Minute
	if v, ok := os.LookupEnv("CACHE_TTL"); ok {
		cacheTTL, err = time.ParseDuration(v)
		if err != nil {
			log.Fatal().Err(err).Msg("environment variable CACHE_TTL is not a valid duration")
		}
	}

	queueSize := 64
	if v, ok := os.LookupEnv("SYNC_QUEUE_SIZE"); ok {
		queueSize, err = strconv.Atoi(v)
		if err != nil {
			log.Fatal().Err(err).Msg("environment variable SYNC_QUEUE_SIZE is not a number")
		}
	}

	// The sync layer lives outside of this process. Triggers are logged so
	// that a sidecar can pick them up.
	notifier := notify.New(queueSize, func(_ context.Context, changeType string) error {
		log.Info().Str("source", "sync").Str("changeType", changeType).Msg("critical change")
		return nil
	})
	// Stop drains the queue on shutdown, the worker must outlive ctx
	notifier.Start(context.Background())

	p := projection.New()
	q := query.New(s, cacheTTL, log.Logger)
	engine := ledger.New(s, p, notifier, log.Logger, q, p)

	// The stored balances are authoritative. Drift is only reported here,
	// POST /v1/balances/recalculate repairs it.
	b, v, err := engine.CheckBalances(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load balances")
	}
	log.Info().Str("actualBalance", b.ActualBalance.String()).Str("unassignedCash", b.UnassignedCash.String()).Bool("valid", v.IsValid).Msg("balances loaded")

	r, teardown, err := router.Config(u)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()

	router.AttachRoutes(router.Controller{
		V1:      v1.Controller{Engine: engine, Query: q},
		Healthz: healthz.Controller{Store: s},
	}, r.Group("/"))

	go maintain(ctx, s, q)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msg(err.Error())
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	if err := notifier.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("sync notifier did not stop in time")
	}

	if err := s.Close(); err != nil {
		log.Error().Err(err).Msg("could not close the database")
	}
}

// maintain removes expired cache entries and trims the audit log once an hour.
func maintain(ctx context.Context, s *store.Store, q *query.Service) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := q.Cleanup(ctx)
			if err != nil {
				log.Error().Str("source", "maintenance").Err(err).Msg("cache cleanup failed")
			}

			result, err := s.Optimize(ctx)
			if err != nil {
				log.Error().Str("source", "maintenance").Err(err).Msg("optimize failed")
				continue
			}

			log.Debug().Str("source", "maintenance").Int64("cacheEntries", removed+result.ExpiredCacheEntries).Int64("auditLogEntries", result.AuditLogEntries).Msg("maintenance done")
		}
	}
}
