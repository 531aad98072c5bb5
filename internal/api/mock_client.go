package api

import (
	"context"
	"sync"

	"github.com/dixit-research/dixit/internal/models"
)

// MockClient is a mock implementation of BackendClient for testing
type MockClient struct {
	// Mock return values
	SendVal     *models.Answer
	SendErr     error
	HealthVal   string
	HealthErr   error
	EndpointVal string
	BackendVal  models.Backend

	// SendFunc, when set, replaces SendVal/SendErr
	SendFunc func(ctx context.Context, question string) (*models.Answer, error)

	// Call counters/recorders
	mu           sync.Mutex
	SendCalls    int
	HealthCalls  int
	CloseCalled  bool
	LastQuestion string
}

// Ensure MockClient implements BackendClient
var _ BackendClient = (*MockClient)(nil)

func (m *MockClient) Send(ctx context.Context, question string) (*models.Answer, error) {
	m.mu.Lock()
	m.SendCalls++
	m.LastQuestion = question
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, question)
	}
	return m.SendVal, m.SendErr
}

func (m *MockClient) Health(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()
	return m.HealthVal, m.HealthErr
}

func (m *MockClient) Endpoint() string {
	if m.EndpointVal == "" {
		return models.DefaultEndpoint + models.PathAsk
	}
	return m.EndpointVal
}

func (m *MockClient) HealthEndpoint() string {
	return models.DefaultEndpoint + models.PathHealth
}

func (m *MockClient) Backend() models.Backend {
	if m.BackendVal == "" {
		return models.BackendAsk
	}
	return m.BackendVal
}

func (m *MockClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

// Calls returns the number of Send invocations
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SendCalls
}
