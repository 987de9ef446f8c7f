package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"assessment-backend/internal/assessment"
	"assessment-backend/internal/catalog"
	"assessment-backend/internal/identity"
	"assessment-backend/internal/llm"
	"assessment-backend/internal/llm/gemini"
	"assessment-backend/internal/llm/openai"
	"assessment-backend/internal/shared/auth"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/server"
	"assessment-backend/internal/shared/storage/cache"
	"assessment-backend/internal/shared/storage/db"
	"assessment-backend/internal/shared/storage/object"
	localstore "assessment-backend/internal/shared/storage/object/local"
	s3store "assessment-backend/internal/shared/storage/object/s3"
	"assessment-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Redis             *redis.Client
	Store             object.ObjectStore
	Catalog           catalog.Source
	LLM               llm.Client
	Signer            *auth.Signer
	SubmissionsRepo   assessment.Repo
	AssessmentService *assessment.Service
	AssessmentHandler *assessment.Handler
	GoogleAuth        *identity.GoogleService
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := telemetry.Configure(cfg.LogLevel); err != nil {
		log.Printf("bootstrap: invalid log config, keeping defaults: %v", err)
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	redisClient := buildRedis(ctx, cfg)
	llmClient, model, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	signer, err := auth.NewSigner(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Redis:   redisClient,
		Store:   store,
		Catalog: catalog.NewCachedSource(catalog.NewStoreSource(store, cfg.CatalogKey), redisClient, cfg.CatalogCacheTTL),
		LLM:     llmClient,
		Signer:  signer,
	}

	if sqlDB != nil {
		metrics.RegisterDBStats(sqlDB, "submissions")
		app.SubmissionsRepo = &assessment.PGRepo{DB: sqlDB}
	} else {
		app.SubmissionsRepo = assessment.NewMemoryRepo()
	}
	app.AssessmentService = assessment.NewService(app.SubmissionsRepo, app.Catalog, llmClient, cfg.LLMProvider, model, cfg.LLMTimeout)
	app.AssessmentHandler = assessment.NewHandler(app.AssessmentService)
	app.GoogleAuth = identity.NewGoogleService(cfg, signer)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Verifier:          signer,
		Signer:            signer,
		AssessmentHandler: app.AssessmentHandler,
		GoogleAuth:        app.GoogleAuth,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"llm_provider":  cfg.LLMProvider,
		"llm_model":     model,
		"catalog_store": cfg.CatalogStore,
		"database":      sqlDB != nil,
		"redis":         redisClient != nil,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	opts := db.RuntimeOptions(cfg)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err == nil && !db.IsLambdaRuntime() {
		// Lambda deployments run cmd/migrate out of band.
		if migErr := db.RunMigrations(ctx, sqlDB); migErr != nil {
			_ = sqlDB.Close()
			sqlDB, err = nil, fmt.Errorf("run migrations: %w", migErr)
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// BuildStore returns the object store holding the question catalog.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.CatalogStore {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("CATALOG_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.CatalogDir), nil
	}
}

func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	client := cache.NewRedis(cfg)
	if client == nil {
		return nil
	}
	if err := cache.Ping(ctx, client); err != nil {
		telemetry.Warn("bootstrap.redis_unavailable", map[string]any{
			"addr":  cfg.RedisAddr,
			"error": err,
		})
		_ = client.Close()
		return nil
	}
	return client
}

// buildLLM returns the completion client and the model it will report.
// Missing credentials fall back to the placeholder in dev-like environments.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, string, error) {
	var (
		client llm.Client
		model  string
		err    error
	)
	switch cfg.LLMProvider {
	case "none":
		return llm.PlaceholderClient{}, "", nil
	case "gemini":
		var c *gemini.Client
		c, err = gemini.NewClient(ctx, gemini.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.LLMModel})
		if err == nil {
			client, model = c, c.Model()
		}
	default:
		var c *openai.Client
		c, err = openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err == nil {
			client, model = c, c.Model()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: %s client unavailable; serving fallback recommendations: %v", cfg.LLMProvider, err)
			return llm.PlaceholderClient{}, "", nil
		}
		return nil, "", err
	}
	return client, model, nil
}
