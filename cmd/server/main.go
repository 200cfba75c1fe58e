// Command server runs the newsroom API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/internal/cms/migrations"
	"github.com/dmitrymomot/newsdesk/internal/cms/pgstore"
	"github.com/dmitrymomot/newsdesk/internal/config"
	"github.com/dmitrymomot/newsdesk/middlewares"
	"github.com/dmitrymomot/newsdesk/pkg/cache"
	"github.com/dmitrymomot/newsdesk/pkg/cookie"
	"github.com/dmitrymomot/newsdesk/pkg/db"
	"github.com/dmitrymomot/newsdesk/pkg/job"
	"github.com/dmitrymomot/newsdesk/pkg/logger"
	"github.com/dmitrymomot/newsdesk/pkg/oauth"
	"github.com/dmitrymomot/newsdesk/pkg/redis"
	"github.com/dmitrymomot/newsdesk/pkg/session"
	"github.com/dmitrymomot/newsdesk/pkg/storage"
	"github.com/dmitrymomot/newsdesk/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "newsdesk.yaml", "path to an optional YAML config file")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.NewWithConfig(cfg.Log,
		middlewares.RequestIDExtractor(),
		newsdesk.UserIDExtractor(),
	).With(slog.String("service", cfg.Server.ServiceName))

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, log)
	if err != nil {
		return err
	}

	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, migrations.FS, db.WithMigrationLogger(log)); err != nil {
		return err
	}
	if err := job.Migrate(ctx, pool, log); err != nil {
		return err
	}

	deps := cms.Deps{
		Logger: log,
	}
	store := pgstore.New(pool)
	deps.Posts, deps.Users, deps.Images = store, store, store
	deps.Search = pgstore.NewSearch(pool)

	var sessions newsdesk.SessionStore = session.NewMemoryStore()
	deps.Cache = cache.NewMemory[api.Post](cache.WithMaxEntries(10_000))
	shutdown := []newsdesk.RunOption{
		newsdesk.Logger(log),
		newsdesk.ShutdownTimeout(cfg.Server.ShutdownTimeout),
	}
	readiness := []newsdesk.HealthOption{newsdesk.WithReadinessCheck("postgres", db.Healthcheck(pool))}
	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		shutdown = append(shutdown, newsdesk.ShutdownHook(redis.Shutdown(client)))
		sessions = session.NewRedisStore(client)
		deps.Cache = cache.NewRedis[api.Post](client, cache.JSON[api.Post]{}, cache.WithPrefix("newsdesk:post"))
		readiness = append(readiness, newsdesk.WithReadinessCheck("redis", redis.Healthcheck(client)))
	} else {
		log.Warn("redis not configured; sessions and post cache are process-local")
	}

	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		deps.Files = s3
		readiness = append(readiness, newsdesk.WithReadinessCheck("storage", s3.Ping))
	} else {
		log.Warn("object storage not configured; image uploads are disabled")
	}

	if cfg.Session.Secret != "" {
		deps.Cookies = cookie.New(
			cookie.WithSecret(cfg.Session.Secret),
			cookie.WithSecure(cfg.Session.Secure),
			cookie.WithDomain(cfg.Session.Domain),
		)
	}
	if cfg.Google.Enabled() {
		google, err := oauth.NewGoogleProvider(cfg.Google, oauth.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}))
		if err != nil {
			return err
		}
		deps.OAuth = google
	}

	// The scheduler enqueues through the same manager that runs the tasks,
	// so the manager is built before the handlers and gets its tasks after.
	publish := &publishTask{}
	reindex := cms.NewSyncSearchIndexTask(deps.Posts, deps.Search, log)
	jobs, err := job.NewManager(pool,
		job.WithLogger(log),
		job.WithMaxWorkers(cfg.Jobs.Workers),
		job.WithQueue(cms.EditorialQueue, cfg.Jobs.EditorialWorkers),
		job.WithTask[cms.PublishPostPayload](publish),
		job.WithScheduledTask(reindex),
	)
	if err != nil {
		return err
	}
	deps.Scheduler = pgstore.NewScheduler(pool, jobs)
	readiness = append(readiness, newsdesk.WithReadinessCheck("jobs", jobs.Healthcheck))

	handlers := cms.NewHandlers(deps)
	publish.task = cms.NewPublishPostTask(handlers.Service())

	cors := []middlewares.CORSOption{
		middlewares.WithAllowMethods(http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions),
		middlewares.WithAllowHeaders("Authorization", "Content-Type", "X-Request-ID"),
		middlewares.WithAllowCredentials(),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors = append(cors, middlewares.WithAllowOrigins(cfg.Server.CORSOrigins...))
	}

	app := newsdesk.New(
		newsdesk.WithCustomLogger(log),
		newsdesk.WithServiceName(cfg.Server.ServiceName),
		newsdesk.WithMiddleware(
			middlewares.RequestID(),
			middlewares.CORS(cors...),
			middlewares.Timeout(cfg.Server.RequestTimeout),
		),
		newsdesk.WithSession(sessions,
			newsdesk.WithSessionMaxAge(cfg.Session.MaxAge),
			newsdesk.WithSessionSecure(cfg.Session.Secure),
			newsdesk.WithSessionDomain(cfg.Session.Domain),
		),
		newsdesk.WithHealthChecks(readiness...),
		newsdesk.WithJobs(jobs),
		newsdesk.WithRoutes(handlers.Routes),
	)

	shutdown = append(shutdown,
		newsdesk.ShutdownHook(db.Shutdown(pool)),
		newsdesk.ShutdownHook(shutdownTracer),
	)
	return app.Run(cfg.Server.Addr, shutdown...)
}

// publishTask lets the job manager be created before the service it calls.
type publishTask struct {
	task *cms.PublishPostTask
}

// Name implements job.Task.
func (t *publishTask) Name() string { return cms.PublishPostTaskName }

// Handle implements job.Task.
func (t *publishTask) Handle(ctx context.Context, p cms.PublishPostPayload) error {
	return t.task.Handle(ctx, p)
}
