package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hucha-app/hucha-api/utils"
)

func InitDB(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS household_state (
			slot TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		// Change notifications: every committed write to the slot fires a
		// NOTIFY carrying the slot name, which the watch side LISTENs for.
		`CREATE OR REPLACE FUNCTION notify_household_state() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('household_state_changed', NEW.slot);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS household_state_notify ON household_state`,

		`CREATE TRIGGER household_state_notify
			AFTER INSERT OR UPDATE ON household_state
			FOR EACH ROW EXECUTE FUNCTION notify_household_state()`,
	}

	return utils.WithTransaction(db, func(tx *sql.Tx) error {
		for _, migration := range migrations {
			if _, err := tx.Exec(migration); err != nil {
				return fmt.Errorf("failed to run migration: %w", err)
			}
		}
		return nil
	})
}
