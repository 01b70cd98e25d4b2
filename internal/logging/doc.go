// Package logging provides structured logging for axectl.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the miner client and the subnet scanner.
//
// # Log Levels
//
//   - Debug: every probe attempt (address, path, outcome)
//   - Info: scan summaries and commands sent to miners
//   - Warn: non-fatal issues (log stream drops)
//   - Error: command failures
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set AXECTL_LOG_LEVEL
// (or pass --log-level) to "debug", "info", "warn" or "error" to enable it:
//
//	if err := logging.Initialize(level); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Logs are written to stderr in console format, leaving stdout for command
// output such as --format json.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned. The scanner calls them from many goroutines at once.
package logging
