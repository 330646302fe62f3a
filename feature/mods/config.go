package mods

// Config holds configuration for mod discovery and loading.
type Config struct {
	// Dirs lists the directories scanned for .ztd archives, comma separated in the environment.
	Dirs []string `mapstructure:"dirs" default:"mods"`
	// OrderFile is the document holding mod_loading.order and mod_loading.disabled.
	OrderFile string `mapstructure:"order_file" default:"mod-loader.toml"`
	// Remote enables loading archives from the storage bucket.
	Remote bool `mapstructure:"remote" default:"false"`
	// RemotePrefix is the object prefix scanned in the bucket.
	RemotePrefix string `mapstructure:"remote_prefix" default:"mods/"`
	// History records every load cycle in the database.
	History bool `mapstructure:"history" default:"false"`
	// Workers bounds the number of archives opened concurrently.
	Workers int `mapstructure:"workers" default:"8"`
}
