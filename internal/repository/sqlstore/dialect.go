package sqlstore

import "fmt"

// Dialect holds the statements that differ between SQL engines
type Dialect struct {
	Name        string
	DriverName  string
	CreateTable string
	Get         string
	Upsert      string
	InsertNew   string
	Delete      string
}

// SQLite targets modernc.org/sqlite
var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	CreateTable: `CREATE TABLE IF NOT EXISTS kv_entries (
		entry_key   TEXT PRIMARY KEY,
		entry_value BLOB NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	Get: `SELECT entry_value FROM kv_entries WHERE entry_key = ?`,
	Upsert: `INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = excluded.updated_at`,
	InsertNew: `INSERT OR IGNORE INTO kv_entries (entry_key, entry_value, updated_at) VALUES (?, ?, ?)`,
	Delete:    `DELETE FROM kv_entries WHERE entry_key = ?`,
}

// MySQL targets github.com/go-sql-driver/mysql
var MySQL = Dialect{
	Name:       "mysql",
	DriverName: "mysql",
	CreateTable: "CREATE TABLE IF NOT EXISTS kv_entries (" +
		"`entry_key` VARCHAR(191) NOT NULL PRIMARY KEY, " +
		"`entry_value` LONGBLOB NOT NULL, " +
		"`updated_at` DATETIME(6) NOT NULL" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	Get: "SELECT `entry_value` FROM kv_entries WHERE `entry_key` = ?",
	Upsert: "INSERT INTO kv_entries (`entry_key`, `entry_value`, `updated_at`) VALUES (?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE `entry_value` = VALUES(`entry_value`), `updated_at` = VALUES(`updated_at`)",
	InsertNew: "INSERT IGNORE INTO kv_entries (`entry_key`, `entry_value`, `updated_at`) VALUES (?, ?, ?)",
	Delete:    "DELETE FROM kv_entries WHERE `entry_key` = ?",
}

// SQLiteDSN opens path with WAL and a busy timeout
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}
