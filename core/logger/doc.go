// Package logger provides a structured logging facility based on Zap.
//
// Level "debug" selects the development configuration; every other level uses the production
// configuration at that level. Format "console" switches to coloured, human-readable output.
//
// The root logger is named after Config.Name and each part of the loader logs through
// Component, so entries carry a "component" such as "mod-loader.resource" or
// "mod-loader.mods".
//
// # Context Awareness
//
// WithRayID extracts the RayID set by the rayid middleware from a Fiber context and attaches
// it to the log entry, so all logs of one request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
