// Package database opens the optional history database.
//
// SQLite is the default so a single binary can keep load-cycle history in a local file; MySQL is
// available for shared deployments. Connect pings before returning, and a failure there is
// treated by callers as "history disabled" rather than fatal.
//
// Columns and MissingColumns read the live schema through the gorm Migrator. History.Migrate
// calls MissingColumns after AutoMigrate so an incompatible table is reported up front.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "load_cycles", "id", "started_at")
package database
