package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http/handlers"
	httpMW "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http/middleware"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler *httpH.HealthHandler
	ReportHandler *httpH.ReportHandler
	PersonHandler *httpH.PersonHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Reports
		if cfg.ReportHandler != nil {
			api.POST("/reports/request", cfg.ReportHandler.RequestReport)
			api.GET("/reports", cfg.ReportHandler.ListReports)
			api.GET("/reports/:id", cfg.ReportHandler.GetReport)
		}

		// People
		if cfg.PersonHandler != nil {
			api.POST("/people", cfg.PersonHandler.CreatePerson)
			api.GET("/people", cfg.PersonHandler.ListPeople)
			api.GET("/people/full", cfg.PersonHandler.ListPeopleFull)
			api.GET("/people/:id", cfg.PersonHandler.GetPerson)
			api.DELETE("/people/:id", cfg.PersonHandler.DeletePerson)
			api.POST("/people/:id/contacts", cfg.PersonHandler.AddContact)
			api.DELETE("/people/:id/contacts/:contactId", cfg.PersonHandler.RemoveContact)
		}
	}

	return r
}
