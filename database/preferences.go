package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"drift/prefs"
)

// PreferenceBackend stores one preference record per user id as JSONB.
type PreferenceBackend struct {
	db     *sql.DB
	userID string
}

var _ prefs.Backend = (*PreferenceBackend)(nil)

func NewPreferenceBackend(db *sql.DB, userID string) *PreferenceBackend {
	if userID == "" {
		userID = "default"
	}
	return &PreferenceBackend{db: db, userID: userID}
}

func (b *PreferenceBackend) Load() (prefs.Preferences, bool, error) {
	var raw []byte
	err := b.db.QueryRow(`SELECT data FROM user_preferences WHERE id = $1`, b.userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs.Defaults(), false, nil
	}
	if err != nil {
		return prefs.Preferences{}, false, err
	}

	p := prefs.Defaults()
	if err := json.Unmarshal(raw, &p); err != nil {
		return prefs.Preferences{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	return p, true, nil
}

func (b *PreferenceBackend) Save(p prefs.Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = b.db.Exec(`
		INSERT INTO user_preferences (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		b.userID, string(raw))
	return err
}

func (b *PreferenceBackend) Clear() error {
	_, err := b.db.Exec(`DELETE FROM user_preferences WHERE id = $1`, b.userID)
	return err
}
