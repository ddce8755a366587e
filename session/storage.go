package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// StorageKey names the single durable record the client reads at startup.
const StorageKey = "auth-storage"

// PersistedState is the durable subset of the session. Only the token survives
// a restart; the user profile is always re-derived from the server. The wire
// shape is {"state":{"token":...}} so records written by other clients of the
// same API remain readable.
type PersistedState struct {
	State TokenRecord `json:"state"`
}

type TokenRecord struct {
	Token *string `json:"token"`
}

// Persistable maps a full session snapshot to its durable subset.
func Persistable(snap Snapshot) PersistedState {
	var token *string
	if snap.Token != "" {
		t := snap.Token
		token = &t
	}
	return PersistedState{State: TokenRecord{Token: token}}
}

// HydrateSnapshot merges a durable record into fresh in-memory defaults.
// The profile is always nil after hydration; FetchUser re-derives it.
func HydrateSnapshot(ps PersistedState) Snapshot {
	snap := Snapshot{}
	if ps.State.Token != nil {
		snap.Token = *ps.State.Token
	}
	return snap
}

// Storage persists the durable session record.
type Storage interface {
	// Load returns the stored record, or ok=false when none exists yet.
	Load() (PersistedState, bool, error)

	// Save writes the record, replacing any previous one.
	Save(PersistedState) error
}

// FileStorage keeps the record as a JSON file in the configured data folder.
type FileStorage struct {
	path string
}

var _ Storage = (*FileStorage)(nil)

func NewFileStorage(dataFolder string) *FileStorage {
	return &FileStorage{path: filepath.Join(dataFolder, StorageKey+".json")}
}

func (f *FileStorage) Load() (PersistedState, bool, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return PersistedState{}, false, nil
	}
	if err != nil {
		return PersistedState{}, false, errors.Wrap(err, "[FileStorage.Load] reading record")
	}
	var ps PersistedState
	if err := json.Unmarshal(raw, &ps); err != nil {
		return PersistedState{}, false, errors.Wrap(err, "[FileStorage.Load] decoding record")
	}
	return ps, true, nil
}

func (f *FileStorage) Save(ps PersistedState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] creating data folder")
	}
	raw, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Save] encoding record")
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] writing record")
	}
	return nil
}
