// Package logging provides structured logging for charterdesk.
//
// This package wraps a package-level zap logger with convenience functions.
// Logging is silent by default so that CLI output and the TUI are not
// interleaved with log lines; it is enabled by passing a level or by setting
// CHARTERDESK_LOG_LEVEL.
//
// # Log Levels
//
//   - Debug: bus traffic, individual request attempts
//   - Info: backend responses, completed reservations, feed connections
//   - Warn: retries, failed reservations, dropped feed messages
//   - Error: failures that abort a command
//
// # Usage
//
//	if err := logging.InitializeWithOptions(logging.Options{
//	    Level:      "debug",
//	    OutputPath: "/tmp/charterdesk.log",
//	}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Info("Search completed",
//	    zap.String("date", "2030-06-01"),
//	    zap.Int("results", 14),
//	)
//
// The TUI writes to a file in the config directory because Bubble Tea owns
// stdout while the program runs.
package logging
