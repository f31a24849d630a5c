package service

import "sync"

// testLogger records messages so tests can assert diagnostics were logged.
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func newTestLogger() *testLogger {
	return &testLogger{messages: []string{}}
}

func (l *testLogger) record(prefix, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, prefix+": "+msg)
}

func (l *testLogger) Info(msg string, fields ...interface{}) { l.record("INFO", msg) }
func (l *testLogger) Error(msg string, err error, fields ...interface{}) {
	l.record("ERROR", msg)
}
func (l *testLogger) Debug(msg string, fields ...interface{}) { l.record("DEBUG", msg) }
func (l *testLogger) Warn(msg string, fields ...interface{}) { l.record("WARN", msg) }

// testConfig implements domain.Config with fixed values.
type testConfig struct {
	port        string
	uploadPath  string
	maxFileSize int64
	baseURL     string
	apiKey      string
	model       string
	timeout     int
	ocrWorkers  int
	maxRetries  int
	backoffMS   int
}

func newTestConfig() *testConfig {
	return &testConfig{
		port:        "8080",
		uploadPath:  "./uploads",
		maxFileSize: 50 * 1024 * 1024,
		baseURL:     "http://localhost:8080",
		apiKey:      "test-key",
		model:       "qwen/qwen3-14b:free",
		timeout:     5,
		ocrWorkers:  4,
		maxRetries:  0,
		backoffMS:   1,
	}
}

func (c *testConfig) GetServerPort() string { return c.port }
func (c *testConfig) GetUploadPath() string { return c.uploadPath }
func (c *testConfig) GetMaxFileSize() int64 { return c.maxFileSize }
func (c *testConfig) GetLogLevel() string { return "error" }
func (c *testConfig) GetPublicBaseURL() string { return c.baseURL }
func (c *testConfig) GetOpenRouterAPIKey() string { return c.apiKey }
func (c *testConfig) GetOpenRouterModel() string { return c.model }
func (c *testConfig) GetStructuringTimeout() int { return c.timeout }
func (c *testConfig) GetOCRWorkers() int { return c.ocrWorkers }
func (c *testConfig) GetStructuringMaxRetries() int { return c.maxRetries }
func (c *testConfig) GetStructuringRetryBackoffMS() int { return c.backoffMS }
