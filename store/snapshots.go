// Package store persists chat session transcripts in a local sqlite
// database so a widget can restore a conversation across restarts.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"

	"chatkit/sdk/chat"
)

// envelopeVersion is stamped into every stored snapshot so the format
// can evolve without guessing what an old row contains.
const envelopeVersion = 1

// SnapshotInfo summarizes one stored transcript.
type SnapshotInfo struct {
	ThreadID     string
	SavedAt      time.Time
	MessageCount int
}

type SnapshotStore struct {
	db *sql.DB
}

// Open creates or opens the snapshot database under dataDir.
func Open(dataDir string) (*SnapshotStore, error) {
	dbPath := filepath.Join(dataDir, "chatkit.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping snapshot database: %w", err)
	}

	s := &SnapshotStore{db: db}
	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot database: %w", err)
	}

	return s, nil
}

func (s *SnapshotStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		thread_id TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		saved_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_saved_at ON snapshots(saved_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save writes the transcript for threadID, replacing any previous one.
func (s *SnapshotStore) Save(threadID string, messages []chat.Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	savedAt := time.Now().UTC()

	data := []byte(`{}`)
	data, err = sjson.SetBytes(data, "version", envelopeVersion)
	if err != nil {
		return fmt.Errorf("failed to build snapshot envelope: %w", err)
	}
	data, err = sjson.SetBytes(data, "savedAt", savedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to build snapshot envelope: %w", err)
	}
	data, err = sjson.SetRawBytes(data, "messages", raw)
	if err != nil {
		return fmt.Errorf("failed to build snapshot envelope: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO snapshots (thread_id, data, saved_at)
	VALUES (?, ?, ?)
	`

	_, err = s.db.Exec(query, threadID, data, savedAt)
	return err
}

// Load returns the stored transcript for threadID, or nil when none
// exists.
func (s *SnapshotStore) Load(threadID string) ([]chat.Message, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE thread_id = ?`, threadID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if v := gjson.GetBytes(data, "version").Int(); v != envelopeVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", v)
	}

	msgs := gjson.GetBytes(data, "messages")
	if !msgs.Exists() {
		return nil, fmt.Errorf("snapshot for %s has no messages field", threadID)
	}

	var messages []chat.Message
	if err := json.Unmarshal([]byte(msgs.Raw), &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

// List returns summaries for all stored transcripts, newest first.
func (s *SnapshotStore) List() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(`SELECT thread_id, data, saved_at FROM snapshots ORDER BY saved_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var data []byte
		if err := rows.Scan(&info.ThreadID, &data, &info.SavedAt); err != nil {
			continue
		}
		info.MessageCount = int(gjson.GetBytes(data, "messages.#").Int())
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

func (s *SnapshotStore) Delete(threadID string) error {
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE thread_id = ?`, threadID)
	return err
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
