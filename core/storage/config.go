package storage

// Config addresses the S3 compatible bucket that remote mod archives are published to.
type Config struct {
	// Endpoint is host:port; an http:// or https:// scheme is accepted and stripped.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL forces TLS. An https:// endpoint enables it too.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket holds the published archives under loading.remote_prefix.
	Bucket string `mapstructure:"bucket" default:"mods"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, the TLS handshake and the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
