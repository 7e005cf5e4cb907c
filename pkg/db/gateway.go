package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FreePeak/turso-mcp-server/internal/logger"
	"github.com/FreePeak/turso-mcp-server/internal/metrics"
)

// Opener creates a connection handle from configuration
type Opener func(cfg Config) (*sqlx.DB, error)

// Option configures a Gateway
type Option func(*Gateway)

// WithOpener replaces the function used to create the connection handle
func WithOpener(open Opener) Option {
	return func(g *Gateway) {
		g.open = open
	}
}

// Gateway owns the single shared database handle. The handle is created on
// first use and reused for the lifetime of the Gateway.
type Gateway struct {
	cfg     Config
	open    Opener
	dialect Dialect
	tracer  trace.Tracer

	mu   sync.Mutex
	conn *sqlx.DB
}

// NewGateway validates cfg and prepares a Gateway. It does not connect.
func NewGateway(cfg Config, opts ...Option) (*Gateway, error) {
	cfg.SetDefaults()

	driverName, err := DriverFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		cfg:     cfg,
		open:    Open,
		dialect: DialectFor(driverName),
		tracer:  otel.Tracer("github.com/FreePeak/turso-mcp-server/pkg/db"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Dialect returns the SQL dialect of the configured database
func (g *Gateway) Dialect() Dialect {
	return g.dialect
}

// ConnectionString returns the configured URL with credentials masked
func (g *Gateway) ConnectionString() string {
	return Redact(g.cfg.URL)
}

// Connection returns the shared handle, creating it on the first call. A
// failed attempt caches nothing, so the next call tries again.
func (g *Gateway) Connection() (*sqlx.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conn != nil {
		return g.conn, nil
	}

	conn, err := g.open(g.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	g.conn = conn
	metrics.GatewayConnectionsOpened.Inc()
	logger.Info("Opened %s connection to %s", conn.DriverName(), Redact(g.cfg.URL))
	return conn, nil
}

// Execute sends one statement to the database. Driver errors are returned
// unwrapped so callers can surface the engine's own message.
func (g *Gateway) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	conn, err := g.Connection()
	if err != nil {
		return nil, err
	}

	kind := Classify(stmt.SQL)
	ctx, span := g.tracer.Start(ctx, "db.execute", trace.WithAttributes(
		attribute.String("db.system", g.dialect.Name()),
		attribute.String("db.operation.kind", string(kind)),
	))
	defer span.End()

	if g.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.QueryTimeout)
		defer cancel()
	}

	query := conn.Rebind(stmt.SQL)
	logger.Debug("Executing %s: %s", kind, query)

	var result *Result
	if kind == KindQuery {
		result, err = queryRows(ctx, conn, query, stmt.Args)
	} else {
		result, err = execStatement(ctx, conn, query, stmt.Args)
	}

	if err != nil {
		metrics.StatementsTotal.WithLabelValues(string(kind), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.StatementsTotal.WithLabelValues(string(kind), "success").Inc()
	span.SetAttributes(attribute.Int("db.rows", len(result.Rows)))
	return result, nil
}

// Close releases the handle if one was opened
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	return err
}

func queryRows(ctx context.Context, conn *sqlx.DB, query string, args []interface{}) (*Result, error) {
	rows, err := conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Warn("error closing rows: %v", closeErr)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Columns: columns,
		Rows:    make([]map[string]interface{}, 0),
	}
	for rows.Next() {
		row := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for col, val := range row {
			row[col] = normalizeValue(val)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func execStatement(ctx context.Context, conn *sqlx.DB, query string, args []interface{}) (*Result, error) {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Columns: []string{},
		Rows:    make([]map[string]interface{}, 0),
	}
	if affected, err := res.RowsAffected(); err == nil {
		result.RowsAffected = affected
	}
	if id, err := res.LastInsertId(); err == nil {
		result.LastInsertID = &id
	}
	return result, nil
}
