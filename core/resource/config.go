package resource

import "time"

// Config holds the memory budget of the store.
type Config struct {
	// MaxMemoryBytes is the high watermark. Zero disables eviction.
	MaxMemoryBytes int64 `mapstructure:"max_memory_bytes" default:"268435456"`
	// TargetMemoryBytes is the low watermark eviction drains down to.
	TargetMemoryBytes int64 `mapstructure:"target_memory_bytes" default:"201326592"`
	// StaleTimeout evicts idle records regardless of pressure once a pass runs. Zero disables it.
	StaleTimeout time.Duration `mapstructure:"stale_timeout" default:"10m"`
}

// Target returns the effective low watermark.
// An unset or out of range target falls back to three quarters of the high watermark.
func (c Config) Target() int64 {
	if c.TargetMemoryBytes <= 0 || c.TargetMemoryBytes > c.MaxMemoryBytes {
		return c.MaxMemoryBytes / 4 * 3
	}
	return c.TargetMemoryBytes
}
