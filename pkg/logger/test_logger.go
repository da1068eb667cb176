package logger

import "sync"

// TestLogger captures log messages so tests can assert on them
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

func (l *TestLogger) root() *capture { return &capture{sink: l} }

func (l *TestLogger) Debug(msg string) { l.root().Debug(msg) }
func (l *TestLogger) Info(msg string)  { l.root().Info(msg) }
func (l *TestLogger) Warn(msg string)  { l.root().Warn(msg) }
func (l *TestLogger) Error(msg string) { l.root().Error(msg) }

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.root().WithField(key, value)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.root().WithFields(fields)
}

func (l *TestLogger) WithError(err error) Logger { return l.root().WithError(err) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.root().DebugWithFields(msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.root().InfoWithFields(msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.root().WarnWithFields(msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.root().ErrorWithFields(msg, fields)
}

func (l *TestLogger) record(m LogMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, m)
}

// GetMessages returns a copy of all captured log messages
func (l *TestLogger) GetMessages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.GetMessages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.GetMessages() {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// capture is a TestLogger view with accumulated fields and error
type capture struct {
	sink   *TestLogger
	fields map[string]interface{}
	err    error
}

func (c *capture) log(level, msg string, extra map[string]interface{}) {
	c.sink.record(LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merge(c.fields, extra),
		Error:   c.err,
	})
}

func (c *capture) Debug(msg string) { c.log("DEBUG", msg, nil) }
func (c *capture) Info(msg string)  { c.log("INFO", msg, nil) }
func (c *capture) Warn(msg string)  { c.log("WARN", msg, nil) }
func (c *capture) Error(msg string) { c.log("ERROR", msg, nil) }

func (c *capture) WithField(key string, value interface{}) Logger {
	return c.WithFields(map[string]interface{}{key: value})
}

func (c *capture) WithFields(fields map[string]interface{}) Logger {
	return &capture{sink: c.sink, fields: merge(c.fields, fields), err: c.err}
}

func (c *capture) WithError(err error) Logger {
	return &capture{sink: c.sink, fields: c.fields, err: err}
}

func (c *capture) DebugWithFields(msg string, fields map[string]interface{}) {
	c.log("DEBUG", msg, fields)
}

func (c *capture) InfoWithFields(msg string, fields map[string]interface{}) {
	c.log("INFO", msg, fields)
}

func (c *capture) WarnWithFields(msg string, fields map[string]interface{}) {
	c.log("WARN", msg, fields)
}

func (c *capture) ErrorWithFields(msg string, fields map[string]interface{}) {
	c.log("ERROR", msg, fields)
}

func merge(a, b map[string]interface{}) map[string]interface{} {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}
