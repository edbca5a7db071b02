package app

import (
	"github.com/gin-gonic/gin"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http"
	httpH "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http/handlers"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Report *httpH.ReportHandler
	Person *httpH.PersonHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{Health: httpH.NewHealthHandler()}
	if services.Reports != nil {
		h.Report = httpH.NewReportHandler(services.Reports)
	}
	if services.People != nil {
		h.Person = httpH.NewPersonHandler(services.People)
	}
	return h
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Telemetry.Enabled {
		serviceName = cfg.Telemetry.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   serviceName,
		CORSOrigins:   cfg.CORSOrigins,
		HealthHandler: handlers.Health,
		ReportHandler: handlers.Report,
		PersonHandler: handlers.Person,
	})
}
