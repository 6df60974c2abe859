// Package control wires the storage, Redis and HTTP components shared by the
// command line tools.
package control

import (
	"time"

	redisclient "github.com/vietddude/paramretry/internal/infra/redis"
	"github.com/vietddude/paramretry/internal/infra/storage/postgres"
)

// Config holds the application configuration.
type Config struct {
	Port      int
	Retention time.Duration
	Redis     redisclient.Config
	Database  postgres.Config
}
