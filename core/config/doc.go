// Package config provides configuration management for the mod loader.
//
// It utilizes Viper for loading configuration from struct-tag defaults, an optional
// config.toml, a .env file and environment variables.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP console settings (port, API key)
//   - Database: load history database (sqlite or mysql)
//   - Storage: S3/MinIO credentials and the bucket holding remote archives
//   - Log: Logging level and format
//   - Cache: resource store budget (max and target bytes, stale timeout)
//   - Loading: archive directories, order file, remote loading, history
//
// Environment variables use the section as prefix, for example CACHE_MAX_MEMORY_BYTES or
// LOADING_DIRS=mods,extra (comma separated lists).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cache.MaxMemoryBytes)
package config
