package sqlite

// Config holds SQLite dataset configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:tracts.db?_pragma=busy_timeout(5000)"
	//   "tracts.db" (interpreted by the driver)
	DSN string

	// Table is the table to normalize. Attached-database names such as
	// "main.tracts" are accepted and split for the catalog lookup.
	Table string
}
