package db

import "database/sql"

// DB wraps the shared sql handle so internal packages depend on one
// type instead of database/sql directly.
type DB struct {
	*sql.DB
}
