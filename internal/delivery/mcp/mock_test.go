package mcp

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

// MockDispatcher is a mock implementation of the Dispatcher
type MockDispatcher struct {
	mock.Mock
}

// List mocks the List method
func (m *MockDispatcher) List() []tools.Descriptor {
	args := m.Called()
	return args.Get(0).([]tools.Descriptor)
}

// Call mocks the Call method
func (m *MockDispatcher) Call(ctx context.Context, name string, params map[string]interface{}) *tools.Envelope {
	args := m.Called(ctx, name, params)
	env, _ := args.Get(0).(*tools.Envelope)
	return env
}

// fakeServer records registered tools and their handlers
type fakeServer struct {
	mu       sync.Mutex
	tools    []interface{}
	handlers map[string]ToolHandler
	failOn   string
}

func newFakeServer() *fakeServer {
	return &fakeServer{handlers: make(map[string]ToolHandler)}
}

func (s *fakeServer) AddTool(_ context.Context, tool interface{}, handler ToolHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := toolName(tool)
	if name == s.failOn {
		return errFakeServer
	}
	s.tools = append(s.tools, tool)
	s.handlers[name] = handler
	return nil
}
