package db

import (
	"fmt"

	"github.com/Morneplaine/EVE/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite manufacturing database.
type DB struct {
	sql *sqlx.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS groups (
				group_id    INTEGER PRIMARY KEY,
				group_name  TEXT NOT NULL,
				category_id INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS items (
				type_id         INTEGER PRIMARY KEY,
				type_name       TEXT NOT NULL,
				group_id        INTEGER NOT NULL DEFAULT 0,
				category_id     INTEGER NOT NULL DEFAULT 0,
				volume          REAL NOT NULL DEFAULT 0,
				packaged_volume REAL NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_items_group ON items(group_id);

			CREATE TABLE IF NOT EXISTS blueprints (
				blueprint_type_id INTEGER PRIMARY KEY,
				product_type_id   INTEGER NOT NULL,
				product_name      TEXT NOT NULL,
				group_name        TEXT NOT NULL DEFAULT '',
				output_quantity   INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_blueprints_product ON blueprints(product_type_id);

			CREATE TABLE IF NOT EXISTS manufacturing_materials (
				blueprint_type_id INTEGER NOT NULL,
				material_type_id  INTEGER NOT NULL,
				material_name     TEXT NOT NULL DEFAULT '',
				quantity          INTEGER NOT NULL,
				PRIMARY KEY (blueprint_type_id, material_type_id)
			);

			CREATE TABLE IF NOT EXISTS manufacturing_skills (
				blueprint_type_id INTEGER NOT NULL,
				skill_type_id     INTEGER NOT NULL,
				skill_name        TEXT NOT NULL DEFAULT '',
				level             INTEGER NOT NULL,
				PRIMARY KEY (blueprint_type_id, skill_type_id)
			);

			CREATE TABLE IF NOT EXISTS prices (
				type_id     INTEGER PRIMARY KEY,
				buy_max     REAL NOT NULL DEFAULT 0,
				buy_volume  REAL NOT NULL DEFAULT 0,
				sell_min    REAL NOT NULL DEFAULT 0,
				sell_avg    REAL NOT NULL DEFAULT 0,
				sell_median REAL NOT NULL DEFAULT 0,
				sell_volume REAL NOT NULL DEFAULT 0,
				updated_at  TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS character_skills (
				skill_type_id INTEGER PRIMARY KEY,
				skill_name    TEXT NOT NULL DEFAULT '',
				level         INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS inventory (
				type_id   INTEGER PRIMARY KEY,
				type_name TEXT NOT NULL DEFAULT '',
				quantity  INTEGER NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS market_history_daily (
				region_id   INTEGER NOT NULL,
				type_id     INTEGER NOT NULL,
				type_name   TEXT,
				date_utc    TEXT NOT NULL,
				average     REAL NOT NULL DEFAULT 0,
				highest     REAL NOT NULL DEFAULT 0,
				lowest      REAL NOT NULL DEFAULT 0,
				order_count INTEGER,
				volume      INTEGER,
				PRIMARY KEY (region_id, type_id, date_utc)
			);
			CREATE INDEX IF NOT EXISTS idx_market_history_type_date
				ON market_history_daily(type_id, date_utc);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (market history)")
	}

	if version < 3 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS input_quantity_cache (
				type_id        INTEGER PRIMARY KEY,
				type_name      TEXT NOT NULL DEFAULT '',
				input_quantity INTEGER NOT NULL,
				source         TEXT NOT NULL,
				needs_review   INTEGER NOT NULL DEFAULT 0,
				updated_at     TEXT NOT NULL DEFAULT ''
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (3);
		`)
		if err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
		logger.Info("DB", "Applied migration v3 (input quantity cache)")
	}

	if version < 4 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS reprocessing_outputs (
				item_type_id     INTEGER NOT NULL,
				item_name        TEXT NOT NULL DEFAULT '',
				material_type_id INTEGER NOT NULL,
				material_name    TEXT NOT NULL DEFAULT '',
				quantity         INTEGER NOT NULL,
				batch_size       INTEGER NOT NULL DEFAULT 1,
				PRIMARY KEY (item_type_id, material_type_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (4);
		`)
		if err != nil {
			return fmt.Errorf("migration v4: %w", err)
		}
		logger.Info("DB", "Applied migration v4 (reprocessing outputs)")
	}

	return nil
}

// SqlDB returns the underlying sqlx handle for use by other packages.
func (d *DB) SqlDB() *sqlx.DB {
	return d.sql
}
