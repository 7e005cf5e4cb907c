package mcp

import (
	"context"
	"fmt"

	"github.com/FreePeak/cortex/pkg/server"
	cortextools "github.com/FreePeak/cortex/pkg/tools"

	"github.com/FreePeak/turso-mcp-server/internal/logger"
	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

// Dispatcher lists and runs tools
type Dispatcher interface {
	List() []tools.Descriptor
	Call(ctx context.Context, name string, args map[string]interface{}) *tools.Envelope
}

// ToolRegistry structure to handle tool registration
type ToolRegistry struct {
	server     ToolServer
	dispatcher Dispatcher
	registered []string
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry(srv ToolServer, dispatcher Dispatcher) *ToolRegistry {
	return &ToolRegistry{
		server:     srv,
		dispatcher: dispatcher,
	}
}

// RegisterAllTools registers every catalog entry with the server
func (tr *ToolRegistry) RegisterAllTools(ctx context.Context) error {
	descriptors := tr.dispatcher.List()
	logger.Info("Registering %d tools", len(descriptors))

	registrationErrors := 0
	for _, desc := range descriptors {
		if err := tr.registerTool(ctx, desc); err != nil {
			logger.Error("Error registering tool %s: %v", desc.Name, err)
			registrationErrors++
			continue
		}
		tr.registered = append(tr.registered, desc.Name)
		logger.Debug("Successfully registered tool %s", desc.Name)
	}

	if registrationErrors > 0 {
		return fmt.Errorf("errors occurred while registering %d tools", registrationErrors)
	}
	return nil
}

// Registered returns the names registered so far
func (tr *ToolRegistry) Registered() []string {
	return append([]string(nil), tr.registered...)
}

func (tr *ToolRegistry) registerTool(ctx context.Context, desc tools.Descriptor) error {
	name := desc.Name
	return tr.server.AddTool(ctx, CreateTool(desc), func(ctx context.Context, request server.ToolCallRequest) (interface{}, error) {
		return FormatResponse(tr.dispatcher.Call(ctx, name, request.Parameters)), nil
	})
}

// CreateTool converts a descriptor into a cortex tool definition. Cortex
// parameters carry no item schema, so array element types are only published
// in the descriptor's InputSchema.
func CreateTool(desc tools.Descriptor) interface{} {
	opts := []cortextools.ToolOption{
		cortextools.WithDescription(desc.Description),
	}

	for _, p := range desc.Params() {
		propOpts := []cortextools.ParameterOption{cortextools.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, cortextools.Required())
		}

		switch p.Type {
		case tools.TypeNumber, tools.TypeInteger:
			opts = append(opts, cortextools.WithNumber(p.Name, propOpts...))
		case tools.TypeBoolean:
			opts = append(opts, cortextools.WithBoolean(p.Name, propOpts...))
		case tools.TypeArray:
			opts = append(opts, cortextools.WithArray(p.Name, propOpts...))
		default:
			opts = append(opts, cortextools.WithString(p.Name, propOpts...))
		}
	}

	return cortextools.NewTool(desc.Name, opts...)
}
