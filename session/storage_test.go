package session_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/careplanhq/portal-client/internal/utils"
	"github.com/careplanhq/portal-client/profile"
	"github.com/careplanhq/portal-client/session"
	"github.com/stretchr/testify/require"
)

func TestPersistableDropsTheProfile(t *testing.T) {
	snap := session.Snapshot{Token: "abc", User: testProfile()}

	ps := session.Persistable(snap)

	require.Equal(t, "abc", utils.Value(ps.State.Token))

	raw, err := json.Marshal(ps)
	require.NoError(t, err)
	require.JSONEq(t, `{"state":{"token":"abc"}}`, string(raw))
}

func TestPersistableAnonymousSession(t *testing.T) {
	ps := session.Persistable(session.Snapshot{})

	raw, err := json.Marshal(ps)
	require.NoError(t, err)
	require.JSONEq(t, `{"state":{"token":null}}`, string(raw))
}

func TestHydrateSnapshotMergesIntoFreshDefaults(t *testing.T) {
	snap := session.HydrateSnapshot(session.PersistedState{
		State: session.TokenRecord{Token: utils.Ptr("abc")},
	})

	require.Equal(t, "abc", snap.Token)
	require.Nil(t, snap.User)

	snap = session.HydrateSnapshot(session.PersistedState{})
	require.Empty(t, snap.Token)
	require.Equal(t, session.StateAnonymous, snap.State())
}

func TestFileStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	storage := session.NewFileStorage(dir)

	_, ok, err := storage.Load()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, storage.Save(session.Persistable(session.Snapshot{Token: "abc"})))

	ps, ok, err := storage.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", utils.Value(ps.State.Token))
}

func TestFileStorageReadsRecordsWrittenByOtherClients(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, session.StorageKey+".json")
	require.NoError(t, os.WriteFile(path, []byte(`{"state":{"token":"abc"}}`), 0o600))

	ps, ok, err := session.NewFileStorage(dir).Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", utils.Value(ps.State.Token))
}

func TestSnapshotStateMachine(t *testing.T) {
	require.Equal(t, session.StateAnonymous, session.Snapshot{}.State())
	require.Equal(t, session.StateAuthenticating, session.Snapshot{Token: "abc"}.State())
	require.Equal(t, session.StateAuthenticated, session.Snapshot{
		Token: "abc",
		User:  &profile.Profile{UserID: 1},
	}.State())
}
