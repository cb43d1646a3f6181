package main

import (
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/courtsideapp/courtside/go/internal/draft/admin"
	"github.com/courtsideapp/courtside/go/internal/draft/engine"
	"github.com/courtsideapp/courtside/go/internal/draft/events"
	"github.com/courtsideapp/courtside/go/internal/draft/room"
	"github.com/courtsideapp/courtside/go/internal/draft/store"
)

type Services struct {
	Manager     *engine.Manager
	Room        *room.Room
	RoomHandler *room.Handler
	Admin       *admin.Handler
	Publisher   *events.JetStreamPublisher
	Consumer    *room.EventConsumer
}

func setupServices(config *Config, database *sql.DB) (*Services, error) {
	// Wire up dependency injection chain
	// Database → persistence gateway → engine manager → room + admin
	gateway := store.NewGateway(database)

	hub := room.NewRoom(room.DefaultConfig())
	broadcasters := []engine.Broadcaster{hub}

	var publisher *events.JetStreamPublisher
	var consumer *room.EventConsumer
	if config.NATS.Publish {
		jsCfg := events.DefaultJetStreamConfig()
		jsCfg.URL = config.NATS.URL
		jsCfg.StreamName = config.NATS.Stream
		jsCfg.SubjectPrefix = config.NATS.SubjectPrefix

		var err error
		publisher, err = events.NewJetStreamPublisher(jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		broadcasters = append(broadcasters, publisher)
	}
	if config.NATS.Consume {
		consumerCfg := room.DefaultConsumerConfig()
		consumerCfg.URL = config.NATS.URL
		consumerCfg.StreamName = config.NATS.Stream
		consumerCfg.SubjectFilter = config.NATS.SubjectPrefix + ".>"

		var err error
		consumer, err = room.NewEventConsumer(hub, consumerCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream consumer: %w", err)
		}
	}

	manager := engine.NewManager(gateway, clockwork.NewRealClock(), broadcasters...)

	return &Services{
		Manager:     manager,
		Room:        hub,
		RoomHandler: room.NewHandler(hub, manager),
		Admin:       admin.NewHandler(manager),
		Publisher:   publisher,
		Consumer:    consumer,
	}, nil
}

// Close tears the services down in reverse dependency order.
func (s *Services) Close() {
	s.Manager.Close()
	if s.Consumer != nil {
		s.Consumer.Stop()
	}
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}
