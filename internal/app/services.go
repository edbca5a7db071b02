package app

import (
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/jobs/worker"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/services"
)

type Services struct {
	Reports services.ReportService
	People  services.PersonService

	ReportWorker *worker.ReportWorker
}

func wireServices(log *logger.Logger, cfg Config, role Role, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	var out Services
	switch role {
	case RoleReports:
		out.Reports = services.NewReportService(log, repos.Report, clients.Broker, cfg.Broker.Topic, metrics)
	case RoleContacts:
		out.People = services.NewPersonService(log, repos.Person, repos.ContactInfo)
	}
	if role.runsWorker(cfg) {
		out.ReportWorker = worker.NewReportWorker(cfg.Worker.Config, log, clients.Broker, clients.Directory, repos.Report, metrics)
	}
	return out
}
