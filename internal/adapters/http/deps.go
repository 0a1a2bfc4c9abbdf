package http

import (
	"github.com/samirrijal/crewmap/internal/adapters/postgres"
	"github.com/samirrijal/crewmap/internal/adapters/valkey"
	"github.com/samirrijal/crewmap/internal/core/usecases"
	"github.com/samirrijal/crewmap/internal/pkg/config"
)

// Broker reports message broker connectivity for readiness checks.
type Broker interface {
	IsConnected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Jobs      *usecases.JobService
	Events    *usecases.EventService
	Posts     *usecases.PostService
	Locations *usecases.LocationResolver
	Listing   *usecases.ListingService
	Sessions  *usecases.MapSessionService
	Broker    Broker
	DB        *postgres.DB
	Cache     *valkey.Cache
	Auth      config.AuthConfig
	Map       config.MapConfig
}
