package llm

import "context"

// MockExecutor permite tests sin llamar a un proveedor real.
// Registra la ultima llamada para aserciones.
type MockExecutor struct {
	Response string
	Err      error

	LastProvider string
	LastPrompt   string
	LastImage    []byte
	Calls        int
}

func (m *MockExecutor) Execute(ctx context.Context, providerID, prompt string, cfg GenerationConfig) (string, error) {
	m.Calls++
	m.LastProvider = providerID
	m.LastPrompt = prompt
	return m.Response, m.Err
}

func (m *MockExecutor) ExecuteVision(ctx context.Context, providerID, prompt string, image []byte, cfg GenerationConfig) (string, error) {
	m.Calls++
	m.LastProvider = providerID
	m.LastPrompt = prompt
	m.LastImage = image
	return m.Response, m.Err
}
