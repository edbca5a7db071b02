package app

import (
	"fmt"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/clients/directory"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/events"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type Clients struct {
	Broker    events.Broker
	Directory directory.SnapshotFetcher
}

func wireClients(log *logger.Logger, cfg Config, role Role) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients
	if role == RoleContacts {
		return out, nil
	}

	broker, err := events.New(cfg.Broker, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init broker: %w", err)
	}
	out.Broker = broker

	if role.runsWorker(cfg) {
		dir, err := directory.NewClient(cfg.Directory, log)
		if err != nil {
			_ = broker.Close()
			return Clients{}, fmt.Errorf("init directory client: %w", err)
		}
		out.Directory = dir
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Broker != nil {
		_ = c.Broker.Close()
	}
}
