package journal

import (
	"context"
	"database/sql"
	"time"
)

// Session is one run of the application.
type Session struct {
	ID        string
	StartedAt time.Time
	Actions   int
}

// Payload encodings stored alongside each entry.
const (
	EncodingJSON = "json"
	// EncodingBase64 holds the raw bytes of a string payload that is not
	// valid UTF-8, which JSON would rewrite.
	EncodingBase64 = "base64"
)

// Entry is one recorded dispatch. Payload is empty for actions without one;
// otherwise Encoding says how to read it.
type Entry struct {
	ID           string
	SessionID    string
	Seq          int
	Slice        string
	Type         string
	Payload      string
	Encoding     string
	DispatchedAt time.Time
}

// Kind returns the "slice/type" tag of the entry.
func (e Entry) Kind() string { return e.Slice + "/" + e.Type }

// Repo handles journal rows.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions(id, started_at) VALUES (?, ?)`, s.ID, s.StartedAt)
	return err
}

func (r *Repo) Append(ctx context.Context, e Entry) error {
	var payload any
	if e.Payload != "" {
		payload = e.Payload
	}
	encoding := e.Encoding
	if encoding == "" {
		encoding = EncodingJSON
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO actions(id, session_id, seq, slice, type, payload, payload_encoding, dispatched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SessionID, e.Seq, e.Slice, e.Type, payload, encoding, e.DispatchedAt)
	return err
}

// Sessions lists sessions newest first with their action counts.
func (r *Repo) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT s.id, s.started_at,
	       (SELECT COUNT(*) FROM actions a WHERE a.session_id = s.id)
	FROM sessions s
	ORDER BY s.started_at DESC, s.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.Actions); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Entries returns a session's actions in dispatch order.
func (r *Repo) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, seq, slice, type, payload, payload_encoding, dispatched_at
	FROM actions WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Slice, &e.Type, &payload, &e.Encoding, &e.DispatchedAt); err != nil {
			return nil, err
		}
		e.Payload = payload.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// SessionExists reports whether id names a recorded session.
func (r *Repo) SessionExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
