package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/candidates"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/services/health"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/config"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server/middleware"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/db"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/object"
	localstore "github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/object/local"
	s3store "github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/object/s3"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Stager           *uploads.Stager
	CandidateRepo    candidates.Repo
	DocumentsService *documents.Service
	CandidateService *candidates.Service
	Autocomplete     *candidates.Autocomplete
	CandidateHandler *candidates.Handler
	Health           *health.Service
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = localstore.Provider
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
		Stager: uploads.NewStager(cfg.StagingDir),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		CandidateHandler: app.CandidateHandler,
		Health:           app.Health,
		RateLimiter:      middleware.NewRateLimiter(nil),
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
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.DBAutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case s3store.Provider:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var repo candidates.Repo
	var pinger health.Pinger
	if app.DB != nil {
		repo = &candidates.PGRepo{DB: app.DB}
		pinger = app.DB
	} else {
		repo = candidates.NewMemoryRepo()
	}

	docSvc := documents.NewService(app.Store)
	candidateSvc := candidates.NewService(repo, docSvc)
	autocomplete := candidates.NewAutocomplete(repo)

	app.CandidateRepo = repo
	app.DocumentsService = docSvc
	app.CandidateService = candidateSvc
	app.Autocomplete = autocomplete
	app.CandidateHandler = candidates.NewHandler(candidateSvc, autocomplete, app.Stager)
	app.Health = health.NewService(pinger, app.Store.Provider())
}
