package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level logged (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the encoding (json, console).
	Format string `mapstructure:"format" default:"json"`
	// Name is the root logger name; components append theirs, e.g. "mod-loader.mods".
	Name string `mapstructure:"name" default:"mod-loader"`
}
