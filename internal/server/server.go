package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atento/knowledge/internal/queue"
	mid "github.com/atento/knowledge/internal/server/middleware"
	"github.com/atento/knowledge/internal/storage"
	"github.com/atento/knowledge/internal/util"
	"github.com/atento/knowledge/pkg/audit"
	"github.com/atento/knowledge/pkg/ingest"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/segment"
	pgxstore "github.com/atento/knowledge/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	aiClient := util.NewAIClient()
	st := pgxstore.NewStorage(conn, aiClient.Dimensions())
	recorder := audit.NewLogRecorder()
	pipeline := ingest.NewPipeline(ingest.NewPipelineParams{
		Store:    st,
		Embedder: aiClient,
		Audit:    recorder,
		Segment: segment.Options{
			ChunkTokens:   util.GetEnvInt("CHUNK_TOKENS", segment.DefaultChunkTokens),
			OverlapTokens: util.GetEnvInt("OVERLAP_TOKENS", segment.DefaultOverlapTokens),
		},
	})

	app := &mid.App{
		Store:          st,
		Pipeline:       pipeline,
		Embedder:       aiClient,
		Proposer:       aiClient,
		Audit:          recorder,
		Queue:          ch,
		Key:            &k,
		S3:             s3,
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterTenantID: util.GetEnv("MASTER_TENANT_ID"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogMethod:  true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "err", v.Error)
			} else {
				logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations() {
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "file://migrations")
	m, err := migrate.New(migrationsPath, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	logger.Info("Database schema up to date")
}
