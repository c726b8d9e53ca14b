package database

import (
	"database/sql"
	"fmt"
	"log"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create_installs_table",
		sql: `CREATE TABLE IF NOT EXISTS installs (
			id TEXT PRIMARY KEY,
			package TEXT NOT NULL,
			feature TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'running',
			exit_code INTEGER,
			output TEXT,
			error TEXT,
			started_at DATETIME,
			finished_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "index_installs_created_at",
		sql:  `CREATE INDEX IF NOT EXISTS idx_installs_created_at ON installs(created_at)`,
	},
	{
		name: "index_installs_feature",
		sql:  `CREATE INDEX IF NOT EXISTS idx_installs_feature ON installs(feature)`,
	},
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		migration TEXT UNIQUE NOT NULL,
		batch INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func hasMigrationRun(db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE migration = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordMigration(db *sql.DB, name string, batch int) error {
	_, err := db.Exec("INSERT INTO migrations (migration, batch) VALUES (?, ?)", name, batch)
	return err
}

func nextBatch(db *sql.DB) (int, error) {
	var batch sql.NullInt64
	if err := db.QueryRow("SELECT MAX(batch) FROM migrations").Scan(&batch); err != nil {
		return 0, err
	}
	return int(batch.Int64) + 1, nil
}

func runMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	batch, err := nextBatch(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		ran, err := hasMigrationRun(db, m.name)
		if err != nil {
			return err
		}
		if ran {
			continue
		}

		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if err := recordMigration(db, m.name, batch); err != nil {
			return err
		}
		log.Printf("[Database] Applied migration %s", m.name)
	}
	return nil
}
