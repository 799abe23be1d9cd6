// Package sqlstore serves the admin functions from a relational database:
// tables are database tables and schemas come from introspection.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/log"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	introspectionLimit = 4
	queryTimeout       = 30 * time.Second
)

// Store implements admin.Client over database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	now     func() time.Time
}

var _ admin.Client = (*Store)(nil)

// Open connects to dsn with the named driver.
func Open(driver, dsn string, logger *slog.Logger) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("a DSN is required for the %s driver", d.name)
	}
	if d.name == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	return New(db, d.name, logger)
}

// New wraps an existing handle.
func New(db *sql.DB, driver string, logger *slog.Logger) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db, dialect: d, logger: logger, now: time.Now}, nil
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Query(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, cancel := s.begin(ctx, name, args)
	defer cancel()
	switch name {
	case admin.FuncTableMapping:
		return s.tableMapping(ctx)
	case admin.FuncGetSchemas:
		return s.schemas(ctx)
	case admin.FuncPaginatedTableDocuments:
		return s.page(ctx, args)
	}
	return nil, admin.Unsupported(name)
}

func (s *Store) Mutation(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, cancel := s.begin(ctx, name, args)
	defer cancel()
	var err error
	switch name {
	case admin.FuncCreateTable:
		err = s.createTable(ctx, admin.ArgString(args, "table"))
	case admin.FuncPatchDocumentsFields:
		err = s.patch(ctx, admin.ArgString(args, "table"), admin.ArgStrings(args, "ids"), admin.ArgMap(args, "fields"))
	case admin.FuncDeleteDocuments:
		err = s.delete(ctx, admin.ArgString(args, "table"), admin.ArgStrings(args, "ids"))
	case admin.FuncAddDocument:
		err = s.insert(ctx, admin.ArgString(args, "table"), admin.ArgDocuments(args, "documents"))
	default:
		err = admin.Unsupported(name)
	}
	return nil, err
}

func (s *Store) begin(ctx context.Context, name string, args map[string]any) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{
		Backend:  s.dialect.name,
		Function: name,
		Table:    admin.ArgString(args, "table"),
	})
	s.logger.LogAttrs(ctx, log.LevelTrace, "admin call", log.RequestLogContextAttrs(ctx)...)
	return context.WithTimeout(ctx, queryTimeout)
}
