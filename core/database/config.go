package database

// Config selects and addresses the history database.
type Config struct {
	// Driver is "sqlite" or "mysql".
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Name is the sqlite file path (":memory:" works) or the mysql schema.
	Name string `mapstructure:"name" default:"mod-loader.db"`
	// Host, Port, User and Password are only read by the mysql driver.
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds the connect ping and mysql reads and writes.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
