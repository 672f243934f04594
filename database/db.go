package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("record not found")

// Config is either a full DATABASE_URL or the individual connection parts.
type Config struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// InitDB opens the pool, waits for the server to answer and applies the
// schema.
func InitDB(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database after retries: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Println("✅ Database connected and migrated")
	return db, nil
}

// ─── Migrations ───────────────────────────────────────────────────────────────

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS user_preferences (
		id         TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS searches (
		id             TEXT PRIMARY KEY,
		origin         TEXT NOT NULL,
		destination    TEXT NOT NULL,
		departure_date TEXT NOT NULL,
		return_date    TEXT,
		trip_type      TEXT NOT NULL,
		adults         INTEGER DEFAULT 1,
		children       INTEGER DEFAULT 0,
		travel_class   TEXT,
		currency       TEXT,
		result_count   INTEGER DEFAULT 0,
		created_at     TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS saved_itineraries (
		id            TEXT PRIMARY KEY,
		search_id     TEXT REFERENCES searches(id),
		name          TEXT NOT NULL,
		offer_json    TEXT NOT NULL,
		pdf_data      BYTEA,
		traveler_name TEXT,
		created_at    TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_saved_itineraries_search_id
		ON saved_itineraries(search_id)`,

	`CREATE INDEX IF NOT EXISTS idx_searches_created_at
		ON searches(created_at DESC)`,
}

func Migrate(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
