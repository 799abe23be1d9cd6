// Package backends opens the admin client named by configuration.
package backends

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/admin/convex"
	"github.com/convex-panel/panelctl/internal/admin/mongostore"
	"github.com/convex-panel/panelctl/internal/admin/sqlstore"
	panelerr "github.com/convex-panel/panelctl/internal/err"
)

// Driver names.
const (
	DriverConvex   = "convex"
	DriverSQLite   = sqlstore.DriverSQLite
	DriverPostgres = sqlstore.DriverPostgres
	DriverMySQL    = sqlstore.DriverMySQL
	DriverMongoDB  = "mongodb"
)

// Drivers lists the accepted driver names.
var Drivers = []string{DriverConvex, DriverSQLite, DriverPostgres, DriverMySQL, DriverMongoDB}

// Config selects and configures a backend.
type Config struct {
	Driver        string
	DeploymentURL string
	AdminKey      string
	DSN           string
	Logger        *slog.Logger
}

// Backend is an opened admin client plus what goes with it.
type Backend struct {
	Driver string
	Client admin.Client
	// Fallback is the standalone mutation path, nil when the backend has none.
	Fallback admin.MutationFunc
	// DeploymentURL is set for hosted deployments and drives dashboard links.
	DeploymentURL string
	closer        func() error
}

func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer()
}

// Factory opens a backend. Commands resolve it from the context under
// FactoryKey so tests can substitute an in-memory client.
type Factory func(ctx context.Context, cfg Config) (*Backend, error)

type factoryKey struct{}

// FactoryKey stores a Factory on a command context.
var FactoryKey = factoryKey{}

// FromClient wraps an already constructed client.
func FromClient(driver string, c admin.Client, deploymentURL string) *Backend {
	return &Backend{Driver: driver, Client: c, DeploymentURL: deploymentURL}
}

// Open builds the backend named by cfg.Driver. An empty driver is convex.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverConvex
	}
	switch driver {
	case DriverConvex:
		c, err := convex.New(convex.Options{DeploymentURL: cfg.DeploymentURL, AdminKey: cfg.AdminKey, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		return &Backend{Driver: driver, Client: c, Fallback: c.RawMutation, DeploymentURL: c.DeploymentURL()}, nil
	case DriverSQLite, DriverPostgres, DriverMySQL:
		s, err := sqlstore.Open(driver, cfg.DSN, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Driver: driver, Client: s, closer: s.Close}, nil
	case DriverMongoDB:
		s, err := mongostore.Open(ctx, cfg.DSN, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Driver: driver, Client: s, closer: s.Close}, nil
	}
	return nil, &panelerr.ValidationError{
		Field:  "backend.driver",
		Reason: fmt.Sprintf("unknown driver %q, expected one of %s", cfg.Driver, strings.Join(Drivers, ", ")),
	}
}
