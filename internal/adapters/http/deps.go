package http

import (
	"github.com/nats-io/nats.go"

	"github.com/lootaura/lootaura/internal/adapters/postgres"
	"github.com/lootaura/lootaura/internal/adapters/valkey"
	"github.com/lootaura/lootaura/internal/core/ports"
	"github.com/lootaura/lootaura/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Search   *usecases.SearchService
	Sessions *usecases.Registry
	Resolver *usecases.LocationResolver
	Geocoder ports.Geocoder
	NATS     *nats.Conn
	DB       *postgres.DB
	Store    *valkey.SessionStore
}
