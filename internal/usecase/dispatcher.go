package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FreePeak/turso-mcp-server/internal/logger"
	"github.com/FreePeak/turso-mcp-server/internal/metrics"
	"github.com/FreePeak/turso-mcp-server/pkg/db"
	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

// Executor runs statements against the database
type Executor interface {
	Dialect() db.Dialect
	Execute(ctx context.Context, stmt db.Statement) (*db.Result, error)
}

// Options tunes the dispatcher
type Options struct {
	// Prefix is prepended to every tool name
	Prefix string
	// StrictIdentifiers rejects table names that are not plain identifiers
	StrictIdentifiers bool
}

// Dispatcher resolves tool calls and runs them through the Executor
type Dispatcher struct {
	exec    Executor
	opts    Options
	catalog *tools.Catalog
	byName  map[string]Tool
	tracer  trace.Tracer
}

// NewDispatcher creates a dispatcher serving the full catalog
func NewDispatcher(exec Executor, opts Options) (*Dispatcher, error) {
	catalog, err := NewCatalog(opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	byName := make(map[string]Tool, len(AllTools))
	for _, t := range AllTools {
		byName[opts.Prefix+string(t)] = t
	}

	return &Dispatcher{
		exec:    exec,
		opts:    opts,
		catalog: catalog,
		byName:  byName,
		tracer:  otel.Tracer("github.com/FreePeak/turso-mcp-server/internal/usecase"),
	}, nil
}

// List returns the static catalog
func (d *Dispatcher) List() []tools.Descriptor {
	return d.catalog.Descriptors()
}

// Catalog returns the underlying catalog
func (d *Dispatcher) Catalog() *tools.Catalog {
	return d.catalog
}

// Call runs one tool invocation. It never returns nil and never panics:
// every failure becomes an envelope with IsError set.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]interface{}) (env *tools.Envelope) {
	callID := uuid.NewString()
	label := d.metricLabel(name)
	start := time.Now()

	ctx, span := d.tracer.Start(ctx, "tool.call", trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.call_id", callID),
	))
	defer span.End()

	log := logger.WithFields(map[string]interface{}{
		"tool":    name,
		"call_id": callID,
	})
	log.Debug("Handling tool call")

	defer func() {
		if r := recover(); r != nil {
			err := &ToolError{Kind: KindInternal, Tool: name, Message: fmt.Sprint(r)}
			logger.ErrorWithStack(err)
			env = d.finish(span, log, label, start, "", err)
		}
	}()

	text, err := d.call(ctx, name, args)
	return d.finish(span, log, label, start, text, err)
}

func (d *Dispatcher) call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	t, ok := d.byName[name]
	if !ok {
		return "", unknownToolError(name)
	}

	inv, err := parseInvocation(t, args, d.opts)
	if err != nil {
		return "", err
	}

	res, err := d.exec.Execute(ctx, inv.statement(d.exec.Dialect()))
	if err != nil {
		return "", executionError(t, err)
	}

	text, err := inv.format(res)
	if err != nil {
		return "", internalError(string(t), err)
	}
	return text, nil
}

// finish records the outcome of a call and builds its envelope
func (d *Dispatcher) finish(span trace.Span, log *logrus.Entry, label string, start time.Time, text string, err error) *tools.Envelope {
	elapsed := time.Since(start)
	metrics.ToolCallDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	log = log.WithField("duration", elapsed.String())

	if err == nil {
		metrics.ToolCallsTotal.WithLabelValues(label, "success").Inc()
		log.Info("Tool call succeeded")
		return tools.FromString(text)
	}

	te := asToolError(label, err)
	metrics.ToolCallsTotal.WithLabelValues(label, te.Kind.String()).Inc()
	span.RecordError(te)
	span.SetStatus(codes.Error, te.Error())

	log = log.WithField("kind", te.Kind.String())
	if te.Kind == KindValidation {
		log.Warnf("Tool call rejected: %s", te.Error())
	} else {
		log.Errorf("Tool call failed: %s", te.Error())
	}
	return tools.FromError(te.Error())
}

func (d *Dispatcher) metricLabel(name string) string {
	if t, ok := d.byName[name]; ok {
		return string(t)
	}
	return "unknown"
}

// Prefix returns the configured tool name prefix
func (d *Dispatcher) Prefix() string {
	return d.opts.Prefix
}

// Resolve maps a name with or without the prefix to its full tool name
func (d *Dispatcher) Resolve(name string) string {
	if _, ok := d.byName[name]; ok {
		return name
	}
	if !strings.HasPrefix(name, d.opts.Prefix) {
		if _, ok := d.byName[d.opts.Prefix+name]; ok {
			return d.opts.Prefix + name
		}
	}
	return name
}
