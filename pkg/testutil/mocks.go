package testutil

import (
	"sync"
)

// MockSignaler is a thread-safe mock implementation of interfaces.Signaler for testing
type MockSignaler struct {
	mu      sync.Mutex
	signals []string
	err     error
}

// NewMockSignaler creates a new mock signaler
func NewMockSignaler() *MockSignaler {
	return &MockSignaler{}
}

func (m *MockSignaler) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, name)
	return m.err
}

// Reload implements the Signaler interface
func (m *MockSignaler) Reload() error { return m.record("reload") }

// ReopenLogs implements the Signaler interface
func (m *MockSignaler) ReopenLogs() error { return m.record("reopen") }

// Stop implements the Signaler interface
func (m *MockSignaler) Stop() error { return m.record("stop") }

// SetError sets the error returned by every signal
func (m *MockSignaler) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetSignals returns a copy of the signals sent so far
func (m *MockSignaler) GetSignals() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.signals))
	copy(result, m.signals)
	return result
}

// MockDataHandler records raw data and flushes for testing
type MockDataHandler struct {
	mu      sync.Mutex
	data    []byte
	flushes int
	closed  bool
}

// NewMockDataHandler creates a new mock data handler
func NewMockDataHandler() *MockDataHandler {
	return &MockDataHandler{}
}

// HandleData implements the DataHandler interface
func (m *MockDataHandler) HandleData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data, data...)
}

// Flush implements the DataHandler interface
func (m *MockDataHandler) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
}

// Close marks the handler closed
func (m *MockDataHandler) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetData returns a copy of the data received
func (m *MockDataHandler) GetData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// IsClosed reports whether Close was called
func (m *MockDataHandler) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
