// Package logger provides the structured logging interface used across wallgrab.
//
// It wraps zerolog with a small Logger interface so components can take a
// logger as a dependency and tests can swap in NewNopLogger or NewTestLogger.
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//
//	log := logger.GetLogger()
//	log.Info("Pipeline started")
//	log.WithField("url", link).Info("Download completed")
//	log.WithError(err).Error("Classification failed")
//
// Console output is colored and written to stderr. When Logging.File is set,
// events are also appended to that file as JSON lines.
package logger
