package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/atiaron/taskflow/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DB struct {
	*sqlx.DB
}

// NewDB opens the database and makes sure the schema exists.
func NewDB(driver, dsn string) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if dsn == "" && driver == DriverSQLite {
		dsn = "taskflow.db"
	}

	connStr := dsn
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		connStr = dsn + "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sqlx.Connect(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY churn.
		db.SetMaxOpenConns(1)
	}

	dbWrapper := &DB{DB: db}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().Debug(fmt.Sprintf("database ready (%s)", driver))
	return dbWrapper, nil
}

// createTables uses only DDL accepted by both sqlite and postgres.
func (db *DB) createTables() error {
	tasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		due_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]'
	);`

	interactionsTable := `
	CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`

	// Append-only unlock log; the first row per achievement wins.
	unlocksTable := `
	CREATE TABLE IF NOT EXISTS achievement_unlocks (
		id TEXT PRIMARY KEY,
		achievement_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		icon TEXT NOT NULL,
		points INTEGER NOT NULL,
		unlocked_at TIMESTAMP NOT NULL
	);`

	countersTable := `
	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_created_at ON interactions(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_unlocks_achievement_id ON achievement_unlocks(achievement_id);`,
	}

	for _, query := range []string{tasksTable, interactionsTable, unlocksTable, countersTable} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
