package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/db"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

// Role picks which of the phonebook processes an App runs.
type Role string

const (
	RoleReports  Role = "reports"
	RoleContacts Role = "contacts"
	RoleWorker   Role = "worker"
)

func (r Role) runsWorker(cfg Config) bool {
	return r == RoleWorker || (r == RoleReports && cfg.Worker.Enabled)
}

func (r Role) defaultAddr() string {
	switch r {
	case RoleReports:
		return ":8080"
	case RoleContacts:
		return ":8081"
	}
	return ""
}

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Role     Role
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, role Role, cfg Config, log *logger.Logger) (*App, error) {
	if strings.ToLower(cfg.LogMode) == "production" || strings.ToLower(cfg.LogMode) == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = role.defaultAddr()
	}
	log = log.With("role", string(role))

	otelShutdown := observability.InitOTel(ctx, log, cfg.Telemetry)
	metrics := observability.NewMetrics()

	pg, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := pg.DB()
	if sqlDB, err := theDB.DB(); err == nil {
		if err := metrics.RegisterDB(sqlDB, cfg.DB.Name); err != nil {
			log.Warn("Registering db stats collector failed", "error", err)
		}
	}

	reposet := wireRepos(theDB, log)
	clientset, err := wireClients(log, cfg, role)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	serviceset := wireServices(log, cfg, role, reposet, clientset, metrics)

	var router *gin.Engine
	if cfg.HTTPAddr != "" {
		router = wireRouter(log, cfg, wireHandlers(log, serviceset), metrics)
	}

	log.Info("App wired",
		"http_addr", cfg.HTTPAddr,
		"worker", serviceset.ReportWorker != nil,
		"broker", cfg.Broker.Kind,
		"directory", cfg.Directory.BaseURL,
	)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Role:         role,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs the report worker (whichever are configured)
// until ctx is cancelled or one of them fails; the other is then stopped too.
func (a *App) Run(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Router == nil && a.Services.ReportWorker == nil {
		return fmt.Errorf("app has nothing to run")
	}
	g, gctx := errgroup.WithContext(ctx)
	if a.Router != nil {
		srv := &http.Server{Engine: a.Router}
		g.Go(func() error {
			a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
			return srv.Run(gctx, a.Cfg.HTTPAddr)
		})
	}
	if w := a.Services.ReportWorker; w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}

// Migrate creates or updates the schema and exits.
func Migrate(cfg Config, log *logger.Logger) error {
	pg, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer pg.Close()
	return pg.AutoMigrateAll()
}
