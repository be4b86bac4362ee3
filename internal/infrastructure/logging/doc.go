// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: console output for human reading
//
// The interactive client points OutputPaths at a file under its state
// directory, since stdout belongs to the prompt.
//
// Example Usage:
//
//	logger, err := logging.New(logging.FileConfig("info", false, "/home/me/.fileflex/client.log"))
//	if err != nil {
//		return err
//	}
//	logger.Info("navigated", zap.String("path", "/docs"))
//	logger.Warn("listing fetch failed", zap.Error(err))
package logging
