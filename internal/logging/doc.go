// Package logging provides structured logging for argus.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used by the crawler and prober.
//
// # Log Levels
//
//   - Debug: per-request details (URLs, status codes, timings, probe causes)
//   - Info: run milestones (catalog loaded, crawl finished)
//   - Warn: non-fatal issues (a listing page failed and was skipped)
//   - Error: fatal issues (catalog unavailable)
//
// # Configuration
//
// Logging is silent by default so the styled terminal output stays clean.
// Enable it with --log-level or the ARGUS_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Logs are written to stderr in console format:
//
//	2025-11-25T10:30:45.123-0800  WARN  Page fetch failed, continuing without it
//	  region=US page=7 error=...
//
// # Thread Safety
//
// All logging functions are safe for concurrent use, including before
// Initialize is called and while the logger is being replaced.
package logging
