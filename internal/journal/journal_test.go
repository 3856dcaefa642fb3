package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jask/statebox/internal/state"
	"github.com/jask/statebox/internal/state/counter"
	"github.com/jask/statebox/internal/state/search"
	"github.com/jask/statebox/internal/store"
)

func openTemp(t *testing.T) *Repo {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	require.NoError(t, Migrate(path))
	require.NoError(t, Migrate(path))
}

func TestRecordAndReplaySession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	repo := openTemp(t)

	rec, err := StartSession(ctx, repo, zap.NewNop())
	require.NoError(t, err)

	s := state.NewStore(store.WithObserver(Observer[state.State](rec)))
	s.Dispatch(search.SetQuery("fishing huts"))
	s.Dispatch(counter.Increment())
	s.Dispatch(search.ClearQuery())
	s.Dispatch(store.Action{Slice: "counter", Type: "reset"})

	entries, err := repo.Entries(ctx, rec.SessionID())
	require.NoError(t, err)
	require.Len(t, entries, 4)
	require.Equal(t, "search/setQuery", entries[0].Kind())
	require.Equal(t, `"fishing huts"`, entries[0].Payload)
	require.Equal(t, "", entries[1].Payload)
	for i, e := range entries {
		require.Equal(t, i+1, e.Seq)
	}

	sessions, err := repo.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, rec.SessionID(), sessions[0].ID)
	require.Equal(t, 4, sessions[0].Actions)

	// the unknown action was journaled but cannot be rebuilt
	_, err = Load(ctx, repo, rec.SessionID(), state.Registry())
	require.ErrorIs(t, err, store.ErrUnknownAction)
}

func TestLoadReplaysToSameState(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	rec, err := StartSession(ctx, repo, nil)
	require.NoError(t, err)

	live := state.NewStore(store.WithObserver(Observer[state.State](rec)))
	live.Dispatch(counter.Decrement())
	live.Dispatch(search.SetQuery("boat hire"))
	live.Dispatch(counter.Decrement())
	live.Dispatch(search.SetQuery("caf\xe9"))

	actions, err := Load(ctx, repo, rec.SessionID(), state.Registry())
	require.NoError(t, err)
	require.Equal(t, []store.Action{
		counter.Decrement(),
		search.SetQuery("boat hire"),
		counter.Decrement(),
		search.SetQuery("caf\xe9"),
	}, actions)

	entries, err := repo.Entries(ctx, rec.SessionID())
	require.NoError(t, err)
	require.Equal(t, EncodingJSON, entries[1].Encoding)
	require.Equal(t, EncodingBase64, entries[3].Encoding)

	replayed := state.NewStore()
	for _, a := range actions {
		replayed.Dispatch(a)
	}
	require.Equal(t, live.State(), replayed.State())
	require.Equal(t, "caf\xe9", state.Query(replayed.State()))
}

func TestUnencodablePayloadLeavesNoSeqGap(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	core, logs := observer.New(zap.WarnLevel)
	rec, err := StartSession(ctx, repo, zap.New(core))
	require.NoError(t, err)

	rec.Record(store.Action{Slice: "search", Type: "setQuery", Payload: make(chan int)})
	rec.Record(counter.Increment())
	rec.Record(search.SetQuery("huts"))

	entries, err := repo.Entries(ctx, rec.SessionID())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].Seq)
	require.Equal(t, 2, entries[1].Seq)
	require.Equal(t, 1, logs.FilterMessage("journal payload not encodable").Len())
}

func TestLoadRejectsUnknownEncoding(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	rec, err := StartSession(ctx, repo, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, Entry{
		ID: "e1", SessionID: rec.SessionID(), Seq: 1,
		Slice: "search", Type: "setQuery",
		Payload: "x", Encoding: "rot13", DispatchedAt: now(),
	}))

	_, err = Load(ctx, repo, rec.SessionID(), state.Registry())
	require.ErrorContains(t, err, "unknown payload encoding")
}

func TestLoadUnknownSession(t *testing.T) {
	repo := openTemp(t)
	_, err := Load(context.Background(), repo, "nope", state.Registry())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRecordFailureIsLoggedNotFatal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	repo := NewRepo(db)

	core, logs := observer.New(zap.WarnLevel)
	rec, err := StartSession(ctx, repo, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := state.NewStore(store.WithObserver(Observer[state.State](rec)))
	s.Dispatch(counter.Increment())

	require.Equal(t, int64(1), state.Count(s.State()))
	require.Equal(t, 1, logs.FilterMessage("journal append failed").Len())
}
