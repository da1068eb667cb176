package logger

// LogAttempt logs the start of one download attempt
func LogAttempt(l Logger, index, total int, url string) {
	l.DebugWithFields("Download attempt", map[string]interface{}{
		"index": index,
		"total": total,
		"url":   url,
	})
}

// LogOutcome logs the result of one download attempt
func LogOutcome(l Logger, url, strategy string, saved int, err error) {
	fields := map[string]interface{}{
		"url":      url,
		"strategy": strategy,
		"saved":    saved,
	}

	if err != nil {
		l.WithError(err).WarnWithFields("Download failed", fields)
		return
	}
	l.InfoWithFields("Download completed", fields)
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	l.WithField("component", component).InfoWithFields("Component started", config)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
