package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/aiops"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/credits"
	"resume-builder/internal/imports"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/payments"
	"resume-builder/internal/queue"
	"resume-builder/internal/reconcile"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/uploads"
	"resume-builder/internal/users"
	"resume-builder/resume/render"
)

// App holds shared dependencies for the API, the worker and the CLI.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Store      object.ObjectStore
	Alerts     queue.Client
	LLM        llm.Client
	PDF        render.PDFRenderer
	Issuer     *auth.Issuer
	Credits    *credits.Service
	Users      *users.Service
	Resumes    *resumes.Service
	Payments   *payments.Service
	Runner     *aiops.Runner
	Reconciler *reconcile.Processor
}

// Build connects infrastructure and wires every service and handler.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	telemetry.SetStaticFields(map[string]any{"env": cfg.Env})

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil && cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	alerts, err := buildAlerts(ctx, cfg)
	if err != nil {
		return nil, err
	}
	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.Env, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Alerts: alerts,
		LLM:    llmClient,
		PDF:    buildPDF(cfg),
		Issuer: issuer,
	}
	app.Router = buildServices(app)
	return app, nil
}

// Close releases broker connections and the database pool.
func (a *App) Close() error {
	if closer, ok := a.Alerts.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		return a.DB.Close()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildAlerts(ctx context.Context, cfg config.Config) (queue.Client, error) {
	switch cfg.AlertTransport {
	case "sqs":
		return queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
	case "amqp":
		return queue.NewAMQPClient(cfg.AMQPURL, cfg.AMQPQueue)
	default:
		return queue.LogClient{}, nil
	}
}

// buildLLM picks the provider. A missing key outside production disables the
// AI routes instead of failing startup.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider == "none" {
		return llm.Disabled{}, nil
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" && cfg.Env != "production" {
		log.Printf("bootstrap: LLM_API_KEY empty; AI operations disabled")
		return llm.Disabled{}, nil
	}

	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	case "openai":
		return openai.NewClient(openai.Options{
			Provider: "openai",
			APIKey:   cfg.LLMAPIKey,
			Model:    modelOrDefault(cfg.LLMModel, "gpt-4o-mini"),
			BaseURL:  cfg.LLMBaseURL,
			Timeout:  cfg.LLMTimeout,
		})
	default:
		base := cfg.LLMBaseURL
		if base == "" {
			base = openai.OpenRouterBaseURL
		}
		return openai.NewClient(openai.Options{
			Provider: "openrouter",
			APIKey:   cfg.LLMAPIKey,
			Model:    modelOrDefault(cfg.LLMModel, "openai/gpt-4o-mini"),
			BaseURL:  base,
			Timeout:  cfg.LLMTimeout,
			Referer:  cfg.LLMAppReferer,
			Title:    cfg.LLMAppTitle,
		})
	}
}

func buildPDF(cfg config.Config) render.PDFRenderer {
	if !cfg.ChromeEnabled {
		return nil
	}
	return render.NewChromePDF(cfg.ChromePath)
}

func buildServices(app *App) *gin.Engine {
	cfg := app.Config

	var (
		userRepo   users.Repo
		resumeRepo resumes.Repo
		events     payments.EventStore
		creditSvc  *credits.Service
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		events = payments.NewPGEventStore(app.DB)
		creditSvc = credits.NewServiceWithStore(credits.NewPGStore(app.DB))
	} else {
		userRepo = users.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
		events = payments.NewMemoryEventStore()
		creditSvc = credits.NewService()
	}

	app.Credits = creditSvc
	app.Users = users.NewService(userRepo, creditSvc, cfg.SignupCredits)
	app.Resumes = resumes.NewService(resumeRepo)
	app.Runner = aiops.NewRunner(creditSvc, app.LLM, aiops.ParseChargeMode(cfg.ChargeMode), app.Alerts)
	app.Reconciler = reconcile.NewProcessor(creditSvc)

	var checkout payments.CheckoutCreator
	if strings.TrimSpace(cfg.StripeSecretKey) != "" {
		checkout = payments.NewStripeCheckout(cfg.StripeSecretKey)
	}
	app.Payments = &payments.Service{
		Credits:       creditSvc,
		Events:        events,
		Checkout:      checkout,
		Catalog:       payments.Catalog(cfg.StripePriceStarter, cfg.StripePricePro),
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    orDefault(cfg.CheckoutSuccessURL, cfg.PublicOrigin+"/credits?checkout=success"),
		CancelURL:     orDefault(cfg.CheckoutCancelURL, cfg.PublicOrigin+"/credits?checkout=cancelled"),
	}

	var presigner uploads.Presigner
	if bucket, ok := app.Store.(*s3store.Store); ok {
		presigner = bucket
	}

	checks := map[string]health.Pinger{}
	if app.DB != nil {
		checks["database"] = app.DB
	}

	return server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: app.Issuer,
		Limiter:  middleware.NewRateLimiter(nil),
		Health:   health.NewService(checks),
		GoogleAuth: googleauth.NewGoogleService(googleauth.GoogleOptions{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			UIRedirect:   orDefault(cfg.UIRedirectURL, cfg.PublicOrigin+"/auth/callback"),
		}, app.Users, app.Issuer),
		Users:   users.NewHandler(app.Users),
		Credits: credits.NewHandler(creditSvc),
		AIOps:   aiops.NewHandler(app.Runner),
		Resumes: resumes.NewHandler(app.Resumes, resumes.Options{
			Objects:         app.Store,
			PDF:             app.PDF,
			PublicOrigin:    cfg.PublicOrigin,
			DefaultLanguage: render.ParseLanguage(cfg.DefaultLanguage),
		}),
		Uploads:  uploads.NewHandler(app.Store, presigner),
		Imports:  imports.NewHandler(),
		Payments: payments.NewHandler(app.Payments),
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) == "" {
		return def
	}
	return model
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
