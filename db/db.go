package db

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"agrichat/types"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Slot names. The chat slots keep the key names of the original release so an
// exported history stays recognizable.
const (
	slotOnboarded = "bvtv_has_onboarded"
	slotSessions  = "bvtv_chat_history"
	slotProfile   = "bvtv_user_profile"
	slotCalcLast  = "sweet_potato_calc_last"
)

type DB struct {
	conn *sql.DB
}

func getDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(homeDir, ".agrichat")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dbDir, "agrichat.db"), nil
}

func Open() (*DB, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	return OpenPath(dbPath)
}

func OpenPath(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) getSlot(name string) (string, bool) {
	var value string
	err := db.conn.QueryRow("SELECT value FROM slots WHERE name = ?", name).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("failed to read slot %s: %v", name, err)
		}
		return "", false
	}
	return value, true
}

func (db *DB) setSlot(name, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		name, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}
	return nil
}

func (db *DB) deleteSlot(name string) error {
	if _, err := db.conn.Exec("DELETE FROM slots WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to clear slot %s: %w", name, err)
	}
	return nil
}

// loadJSON decodes a slot into dst. A missing slot or malformed JSON both
// leave dst untouched: stored state is best-effort and never blocks startup.
func (db *DB) loadJSON(name string, dst interface{}) bool {
	raw, ok := db.getSlot(name)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("discarding malformed slot %s: %v", name, err)
		return false
	}
	return true
}

func (db *DB) saveJSON(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", name, err)
	}
	return db.setSlot(name, string(data))
}

func (db *DB) LoadOnboarded() bool {
	raw, ok := db.getSlot(slotOnboarded)
	return ok && raw == "true"
}

func (db *DB) SaveOnboarded(v bool) error {
	if !v {
		return db.deleteSlot(slotOnboarded)
	}
	return db.setSlot(slotOnboarded, "true")
}

func (db *DB) LoadSessions() []types.ChatSession {
	var sessions []types.ChatSession
	db.loadJSON(slotSessions, &sessions)
	return sessions
}

func (db *DB) SaveSessions(sessions []types.ChatSession) error {
	return db.saveJSON(slotSessions, sessions)
}

func (db *DB) ClearSessions() error {
	return db.deleteSlot(slotSessions)
}

func (db *DB) LoadProfile() types.UserProfile {
	var profile types.UserProfile
	db.loadJSON(slotProfile, &profile)
	return profile
}

func (db *DB) SaveProfile(profile types.UserProfile) error {
	return db.saveJSON(slotProfile, profile)
}

func (db *DB) LoadCalculator() (types.CalculatorInputs, bool) {
	var in types.CalculatorInputs
	ok := db.loadJSON(slotCalcLast, &in)
	return in, ok
}

func (db *DB) SaveCalculator(in types.CalculatorInputs) error {
	return db.saveJSON(slotCalcLast, in)
}

// ClearAllData removes every stored record, including the onboarding marker.
func (db *DB) ClearAllData() error {
	if _, err := db.conn.Exec("DELETE FROM slots"); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}
