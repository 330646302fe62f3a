package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNoTable is returned when an inspected table does not exist.
var ErrNoTable = errors.New("table does not exist")

// Columns returns the live columns of table as lower-cased name to lower-cased database type.
// It goes through the gorm Migrator so the same call works on mysql and sqlite.
func Columns(db *gorm.DB, table string) (map[string]string, error) {
	m := db.Migrator()
	if !m.HasTable(table) {
		return nil, fmt.Errorf("%s: %w", table, ErrNoTable)
	}
	types, err := m.ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	columns := make(map[string]string, len(types))
	for _, ct := range types {
		columns[strings.ToLower(ct.Name())] = strings.ToLower(ct.DatabaseTypeName())
	}
	return columns, nil
}

// MissingColumns returns the expected columns absent from table, in the order given.
func MissingColumns(db *gorm.DB, table string, expected ...string) ([]string, error) {
	columns, err := Columns(db, table)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range expected {
		if _, ok := columns[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
