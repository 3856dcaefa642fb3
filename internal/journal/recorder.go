package journal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/statebox/internal/store"
)

// ErrNoSession is returned when replaying a session that was never recorded.
var ErrNoSession = errors.New("journal session not found")

// Recorder appends every dispatched action to one session.
type Recorder struct {
	ctx     context.Context
	repo    *Repo
	session string
	seq     int
	log     *zap.Logger
}

// StartSession creates a new session and returns its recorder.
func StartSession(ctx context.Context, repo *Repo, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	if err := repo.CreateSession(ctx, Session{ID: id, StartedAt: now()}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Info("journal session started", zap.String("session", id))
	return &Recorder{ctx: ctx, repo: repo, session: id, log: log}, nil
}

func (r *Recorder) SessionID() string { return r.session }

// Record stores a. Failures are logged; a dispatch never fails because the
// journal could not be written.
func (r *Recorder) Record(a store.Action) {
	payload, encoding, err := encodePayload(a.Payload)
	if err != nil {
		r.log.Warn("journal payload not encodable", zap.String("action", a.Kind()), zap.Error(err))
		return
	}
	r.seq++
	e := Entry{
		ID:           uuid.NewString(),
		SessionID:    r.session,
		Seq:          r.seq,
		Slice:        a.Slice,
		Type:         a.Type,
		Payload:      payload,
		Encoding:     encoding,
		DispatchedAt: now(),
	}
	if err := r.repo.Append(r.ctx, e); err != nil {
		r.seq--
		r.log.Warn("journal append failed", zap.String("action", a.Kind()), zap.Error(err))
	}
}

func encodePayload(p any) (payload, encoding string, err error) {
	if p == nil {
		return "", EncodingJSON, nil
	}
	if str, ok := p.(string); ok && !utf8.ValidString(str) {
		return base64.StdEncoding.EncodeToString([]byte(str)), EncodingBase64, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", "", err
	}
	return string(data), EncodingJSON, nil
}

func decoderFor(e Entry) (store.Decoder, error) {
	if e.Payload == "" {
		return nil, nil
	}
	switch e.Encoding {
	case EncodingJSON, "":
		data := []byte(e.Payload)
		return func(v any) error { return json.Unmarshal(data, v) }, nil
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("base64 payload: %w", err)
		}
		return func(v any) error {
			sp, ok := v.(*string)
			if !ok {
				return fmt.Errorf("base64 payload into %T, want *string", v)
			}
			*sp = string(raw)
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", e.Encoding)
	}
}

// Observer adapts rec to a store observer.
func Observer[R any](rec *Recorder) store.Observer[R] {
	return store.ObserverFunc[R](func(a store.Action, _, _ R) { rec.Record(a) })
}

// Load rebuilds a session's actions through reg.
func Load(ctx context.Context, repo *Repo, sessionID string, reg *store.Registry) ([]store.Action, error) {
	ok, err := repo.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, sessionID)
	}
	entries, err := repo.Entries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]store.Action, 0, len(entries))
	for _, e := range entries {
		decode, err := decoderFor(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		a, err := reg.Build(e.Kind(), decode)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		out = append(out, a)
	}
	return out, nil
}
