package sqlite

type mockLogger struct {
	warnings []map[string]interface{}
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.warnings = append(m.warnings, fields)
}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}
