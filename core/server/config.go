package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
	// BodyLimit caps request bodies, which bounds resources installed over HTTP.
	BodyLimit int `mapstructure:"body_limit" default:"16777216"`
}

// Address returns the listen address for Port.
func (c Config) Address() string {
	if c.Port == "" {
		return ":8080"
	}
	return ":" + c.Port
}

// FiberBodyLimit returns BodyLimit, falling back to Fiber's default when unset.
func (c Config) FiberBodyLimit() int {
	if c.BodyLimit <= 0 {
		return 4 * 1024 * 1024
	}
	return c.BodyLimit
}
