package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/assist"
	googleauth "augenblick-backend/internal/auth"
	"augenblick-backend/internal/collaborators"
	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/email"
	"augenblick-backend/internal/exports"
	"augenblick-backend/internal/llm"
	"augenblick-backend/internal/llm/gemini"
	"augenblick-backend/internal/presence"
	"augenblick-backend/internal/shared/config"
	"augenblick-backend/internal/shared/server"
	"augenblick-backend/internal/shared/storage/db"
	"augenblick-backend/internal/shared/storage/object"
	localstore "augenblick-backend/internal/shared/storage/object/local"
	s3store "augenblick-backend/internal/shared/storage/object/s3"
	"augenblick-backend/internal/sync"
	"augenblick-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Broker *documents.Broker

	DocumentsRepo documents.Repo
	UsersRepo     users.Repo

	DocumentsService    *documents.Service
	PresenceService     *presence.Service
	CollaboratorService *collaborators.Service
	AssistService       *assist.Service
	ExportService       *exports.Service
	UsersService        *users.Service

	DocumentHandler     *documents.Handler
	CollaboratorHandler *collaborators.Handler
	PresenceHandler     *presence.Handler
	AssistHandler       *assist.Handler
	SyncHandler         *sync.Handler
	ExportHandler       *exports.Handler
	UserHandler         *users.Handler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Broker: documents.NewBroker(),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		DocumentHandler:     app.DocumentHandler,
		CollaboratorHandler: app.CollaboratorHandler,
		PresenceHandler:     app.PresenceHandler,
		AssistHandler:       app.AssistHandler,
		SyncHandler:         app.SyncHandler,
		ExportHandler:       app.ExportHandler,
		UserHandler:         app.UserHandler,
		GoogleAuth:          app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) error {
	var docRepo documents.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = documents.NewPGRepo(app.DB, app.Broker)
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo(app.Broker)
		userRepo = users.NewMemoryRepo()
	}

	presenceSvc := presence.NewService(docRepo)
	docSvc := documents.NewService(docRepo, presenceSvc)

	mailer := email.NewClient(
		app.Config.EmailServiceID,
		app.Config.EmailTemplateID,
		app.Config.EmailUserID,
	)
	collabSvc := collaborators.NewService(docRepo, mailer)

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "gemini" {
		apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if apiKey != "" {
			geminiClient, err := gemini.NewClient(apiKey, app.Config.LLMModel)
			if err != nil {
				return err
			}
			llmClient = geminiClient
		} else {
			log.Printf("bootstrap: GEMINI_API_KEY empty; AI assistance disabled")
		}
	}
	assistSvc := assist.NewService(llmClient, docSvc)

	exportSvc := exports.NewService(docSvc, app.Store)
	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.DocumentsRepo = docRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.PresenceService = presenceSvc
	app.CollaboratorService = collabSvc
	app.AssistService = assistSvc
	app.ExportService = exportSvc
	app.UsersService = userSvc
	app.DocumentHandler = documents.NewHandler(docSvc)
	app.CollaboratorHandler = collaborators.NewHandler(collabSvc)
	app.PresenceHandler = presence.NewHandler(presenceSvc)
	app.AssistHandler = assist.NewHandler(assistSvc)
	app.SyncHandler = sync.NewHandler(docSvc, docRepo, presenceSvc)
	app.ExportHandler = exports.NewHandler(exportSvc)
	app.UserHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
