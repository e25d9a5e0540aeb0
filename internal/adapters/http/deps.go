package http

import (
	"github.com/nats-io/nats.go"

	"github.com/runmate-app/runmate/internal/adapters/postgres"
	"github.com/runmate-app/runmate/internal/adapters/valkey"
	"github.com/runmate-app/runmate/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Runs     *usecases.RunService
	Profiles *usecases.ProfileService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
