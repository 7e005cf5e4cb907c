package db

// Dialect provides the engine-specific SQL used by the introspection tools.
type Dialect interface {
	// Name returns the dialect identifier (sqlite, mysql, postgres)
	Name() string

	// ListTablesQuery lists user tables as a single "name" column
	ListTablesQuery() Statement

	// DescribeTableQuery returns the column layout of table. The table name is
	// interpolated where the engine offers no bindable form.
	DescribeTableQuery(table string) Statement

	// InsertReturningID reports whether inserts need RETURNING id because the
	// driver cannot report the last inserted row id.
	InsertReturningID() bool
}

// SQLiteDialect serves libSQL / Turso and any SQLite-compatible engine
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) ListTablesQuery() Statement {
	return Statement{SQL: "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"}
}

func (SQLiteDialect) DescribeTableQuery(table string) Statement {
	return Statement{SQL: "PRAGMA table_info(" + table + ")"}
}

func (SQLiteDialect) InsertReturningID() bool { return false }

// MySQLDialect serves MySQL and MariaDB
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) ListTablesQuery() Statement {
	return Statement{SQL: "SELECT table_name AS name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"}
}

func (MySQLDialect) DescribeTableQuery(table string) Statement {
	return Statement{SQL: "SHOW COLUMNS FROM " + table}
}

func (MySQLDialect) InsertReturningID() bool { return false }

// PostgresDialect serves PostgreSQL
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) ListTablesQuery() Statement {
	return Statement{SQL: "SELECT tablename AS name FROM pg_catalog.pg_tables WHERE schemaname = 'public' ORDER BY tablename"}
}

func (PostgresDialect) DescribeTableQuery(table string) Statement {
	return Statement{
		SQL:  "SELECT column_name AS name, data_type AS type, is_nullable, column_default FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
		Args: []interface{}{table},
	}
}

func (PostgresDialect) InsertReturningID() bool { return true }

// DialectFor returns the dialect matching a driver name
func DialectFor(driverName string) Dialect {
	switch driverName {
	case DriverMySQL:
		return MySQLDialect{}
	case DriverPostgres:
		return PostgresDialect{}
	default:
		return SQLiteDialect{}
	}
}
