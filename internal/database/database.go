package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/config"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/nlq"
)

// DBAdapter bundles the two collaborator roles the answering service
// needs: schema introspection at startup and parameterized query
// execution.
type DBAdapter interface {
	GetSchema(ctx context.Context) (nlq.SchemaSnapshot, error)
	Execute(ctx context.Context, query string, params []any) ([]nlq.Row, error)
	Dialect() nlq.Dialect
	Ping(ctx context.Context) error
	Close() error
}

var _ DBAdapter = (*DB)(nil)

// DB holds the database connection pool and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

// DialectHandler supplies everything store-specific: pool creation,
// schema introspection queries, and the SQL spellings the compiler
// obtains through nlq.Dialect.
type DialectHandler interface {
	nlq.Dialect
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	ListTables(ctx context.Context, db *DB) ([]string, error)
	ListColumns(ctx context.Context, db *DB, tableName string) ([]nlq.ColumnDescriptor, error)
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialectHandlers[dialect]; exists {
		log.Printf("WARN: Dialect handler for '%s' is being overwritten.", dialect)
	}
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

func New(cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	ctx := context.Background()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (db *DB) Dialect() nlq.Dialect {
	return db.Handler
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	log.Println("WARN: Attempted to close a nil database connection pool.")
	return nil
}

// GetSchema walks the store's visible tables and returns them with
// their columns in ordinal order.
func (db *DB) GetSchema(ctx context.Context) (nlq.SchemaSnapshot, error) {
	if db.Handler == nil {
		return nlq.SchemaSnapshot{}, fmt.Errorf("dialect handler not initialized")
	}
	tables, err := db.Handler.ListTables(ctx, db)
	if err != nil {
		return nlq.SchemaSnapshot{}, fmt.Errorf("failed to list tables: %w", err)
	}

	var snapshot nlq.SchemaSnapshot
	for _, table := range tables {
		columns, err := db.Handler.ListColumns(ctx, db, table)
		if err != nil {
			return nlq.SchemaSnapshot{}, fmt.Errorf("failed to list columns for table %s: %w", table, err)
		}
		snapshot.Tables = append(snapshot.Tables, nlq.TableSchema{Name: table, Columns: columns})
	}
	return snapshot, nil
}

// Execute runs a parameterized query and materializes the result set
// as rows keyed by column name. Byte slices are converted to strings
// so drivers that return raw bytes shape answers the same way.
func (db *DB) Execute(ctx context.Context, query string, params []any) ([]nlq.Row, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}

	rows, err := db.Pool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading result columns: %w", err)
	}

	var out []nlq.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("error scanning result row: %w", err)
		}

		row := make(nlq.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return out, nil
}
