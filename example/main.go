// Package main demonstrates the École Directe client end to end: it loads
// configuration from the environment, wires a challenge answer store and an
// event bus, logs in (answering the security question from the store) and
// fetches homework, grades and the week's timetable for the first student
// on the account.
//
// Configuration comes from the environment (a .env file is honored when
// present). ED_USERNAME and ED_PASSWORD are required:
//
//	ED_USERNAME=jdupont ED_PASSWORD=secret go run ./example
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// Configuration
	"github.com/ecoledirecte-hub/ecoledirecte-go/config"

	// Domain layer
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/challenge"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"

	// Infrastructure layer
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/external/ecoledirecte"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/messaging"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/metrics"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/persistence/file"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/persistence/postgres"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/persistence/redis"

	// Packages
	"github.com/ecoledirecte-hub/ecoledirecte-go/pkg/timeutil"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// eventBus is what the example needs from either bus implementation.
type eventBus interface {
	shared.EventBus
	Close() error
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// A .env file is optional, the environment always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting École Directe client example",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. CHALLENGE ANSWER STORE
	// ─────────────────────────────────────────────────────────────────────────
	// Lazily opened so the store and the event bus share one Redis
	// connection when both are configured to use it.
	var redisCache *redis.Cache
	ensureRedis := func() (*redis.Cache, error) {
		if redisCache != nil {
			return redisCache, nil
		}
		log.Info("connecting to Redis...", "host", cfg.Redis.Host, "port", cfg.Redis.Port)
		rc := redis.DefaultConfig()
		rc.Host = cfg.Redis.Host
		rc.Port = cfg.Redis.Port
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		rc.PoolSize = cfg.Redis.PoolSize
		rc.MinIdleConns = cfg.Redis.MinIdleConns
		rc.DialTimeout = cfg.Redis.DialTimeout
		rc.ReadTimeout = cfg.Redis.ReadTimeout
		rc.WriteTimeout = cfg.Redis.WriteTimeout
		cache, err := redis.NewCache(rc)
		if err != nil {
			return nil, err
		}
		redisCache = cache
		return cache, nil
	}
	defer func() {
		if redisCache != nil {
			log.Info("closing Redis connection...")
			redisCache.Close()
		}
	}()

	var store challenge.Store
	switch cfg.ChallengeStore.Backend {
	case config.StoreFile:
		store = file.NewAnswerStore(cfg.ChallengeStore.File, log)
		log.Info("using file answer store", "path", cfg.ChallengeStore.File)

	case config.StorePostgres:
		log.Info("connecting to database...")
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
		pgCfg.MinConns = int32(cfg.Database.MinConns)
		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			conn.Close()
		}()

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", "error", err)
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed", "applied", applied, "total", len(status))
		}

		store = postgres.NewAnswerStore(conn)
		log.Info("using PostgreSQL answer store")

	case config.StoreRedis:
		cache, err := ensureRedis()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store = redis.NewAnswerStore(cache)
		log.Info("using Redis answer store")

	default:
		return fmt.Errorf("unknown challenge store backend %q", cfg.ChallengeStore.Backend)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.EventBus.Async,
		WorkerPoolSize: cfg.EventBus.Workers,
		Logger:         log,
		EnableMetrics:  true,
	}

	var bus eventBus
	switch cfg.EventBus.Backend {
	case config.BusRedis:
		cache, err := ensureRedis()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewEventBridge(cache),
			ChannelName:    cfg.EventBus.Channel,
			LocalBusConfig: busCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		bus = redisBus
		log.Info("using Redis event bus", "channel", cfg.EventBus.Channel)

	default:
		bus = messaging.NewInMemoryEventBus(busCfg)
		log.Info("using in-memory event bus")
	}
	defer func() {
		log.Info("closing event bus...")
		bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. SECURITY QUESTION ALERTS
	// ─────────────────────────────────────────────────────────────────────────
	// Subscribed before login so a question raised during the handshake is
	// not missed. The deferred bus close drains async handlers.
	err = bus.Subscribe(shared.EventChallengeQuestion, func(event shared.Event) error {
		payload := event.Payload()
		log.Warn("provider asked a security question with no stored answer; "+
			"add the answer to the store and log in again",
			"device", event.AggregateID(),
			"question", payload["question"],
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to security question events: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. METRICS
	// ─────────────────────────────────────────────────────────────────────────
	var clientMetrics metrics.ClientMetrics = metrics.NewNop()
	if cfg.Observability.MetricsEnabled {
		registry := prometheus.NewRegistry()
		clientMetrics = metrics.NewCollector(registry)

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Observability.MetricsPort),
			Handler: mux,
		}
		go func() {
			log.Info("metrics endpoint listening", "address", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	clientCfg := ecoledirecte.DefaultClientConfig()
	clientCfg.BaseURL = cfg.Provider.BaseURL
	clientCfg.APIVersion = cfg.Provider.APIVersion
	clientCfg.Timeout = cfg.Provider.Timeout
	clientCfg.RateLimit = cfg.Provider.RateLimit
	clientCfg.RateLimitBurst = cfg.Provider.RateLimitBurst
	clientCfg.Logger = log
	clientCfg.Metrics = clientMetrics
	clientCfg.Debug = cfg.Provider.Debug

	client := ecoledirecte.NewClient(clientCfg, store, bus)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. LOGIN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("logging in...", "username", cfg.Provider.Username)
	sess, err := client.Login(ctx, cfg.Provider.Username, cfg.Provider.Password)
	if err != nil {
		switch {
		case shared.IsChallenge(err):
			log.Error("login blocked by an unanswered security question", "error", err)
		case shared.IsCache(err):
			log.Error("challenge answer store is unusable", "error", err)
		default:
			log.Error("login failed", "error", err)
		}
		return err
	}
	log.Info("logged in", "session", sess.String())

	if len(sess.Students) == 0 {
		log.Info("account has no student profiles, nothing to fetch")
		return nil
	}
	student := sess.Students[0]
	log.Info("fetching data for student",
		"student", student.FullName(),
		"class", student.ClassName,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. SCHOOL DATA
	// ─────────────────────────────────────────────────────────────────────────
	// Each fetch failure is logged and skipped, one broken endpoint should
	// not hide the rest of the account.
	today := timeutil.Now()

	dayHomework, err := client.GetHomeworksByDate(ctx, sess, student, today)
	if err != nil {
		log.Error("failed to fetch today's homework", "error", err)
	} else {
		log.Info("homework due today", "count", len(dayHomework))
		for _, hw := range dayHomework {
			log.Info("homework",
				"subject", hw.Matiere,
				"done", hw.IsDone(),
				"test", hw.IsTest(),
			)
		}
	}

	upcoming, err := client.GetHomeworks(ctx, sess, student)
	if err != nil {
		log.Error("failed to fetch upcoming homework", "error", err)
	} else {
		log.Info("upcoming homework", "count", len(upcoming))
	}

	year, err := shared.NewSchoolYear(timeutil.CurrentSchoolYear())
	if err != nil {
		return fmt.Errorf("failed to build school year: %w", err)
	}
	grades, err := client.GetGrades(ctx, sess, student, year)
	if err != nil {
		log.Error("failed to fetch grades", "error", err)
	} else {
		log.Info("grades", "count", len(grades), "year", year.String())
		for i, g := range grades {
			if i == 3 {
				break
			}
			log.Info("grade",
				"subject", g.LibelleMatiere,
				"value", g.Valeur,
				"scale", g.NoteSur,
				"significant", g.IsSignificant(),
			)
		}
	}

	week, err := shared.NewDateRange(timeutil.StartOfWeek(today), timeutil.EndOfWeek(today))
	if err != nil {
		return fmt.Errorf("failed to build week range: %w", err)
	}
	lessons, err := client.GetLessons(ctx, sess, student, week)
	if err != nil {
		log.Error("failed to fetch lessons", "error", err)
	} else {
		cancelled := 0
		for _, lesson := range lessons {
			if lesson.IsCancelled() {
				cancelled++
			}
		}
		log.Info("lessons this week", "count", len(lessons), "cancelled", cancelled)
	}

	log.Info("done")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging from the observability section.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
