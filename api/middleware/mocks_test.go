package middleware

type logEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

type mockLogger struct {
	logs []logEntry
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, logEntry{Level: "DEBUG", Message: msg, Fields: fields})
}

func (m *mockLogger) Info(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, logEntry{Level: "INFO", Message: msg, Fields: fields})
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, logEntry{Level: "WARN", Message: msg, Fields: fields})
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, logEntry{Level: "ERROR", Message: msg, Fields: fields})
}
