package storagefakes

import (
	"sync"

	"github.com/careplanhq/portal-client/session"
)

// FakeStorage is an in-memory session.Storage for tests.
type FakeStorage struct {
	mu        sync.Mutex
	record    *session.PersistedState
	loadErr   error
	saveErr   error
	saveCalls int
}

var _ session.Storage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{}
}

// Seed installs a record as if a previous process had written it.
func (f *FakeStorage) Seed(ps session.PersistedState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record = &ps
}

func (f *FakeStorage) FailLoadsWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadErr = err
}

func (f *FakeStorage) FailSavesWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *FakeStorage) Load() (session.PersistedState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return session.PersistedState{}, false, f.loadErr
	}
	if f.record == nil {
		return session.PersistedState{}, false, nil
	}
	return *f.record, true, nil
}

func (f *FakeStorage) Save(ps session.PersistedState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.record = &ps
	return nil
}

// Record returns the last saved record, if any.
func (f *FakeStorage) Record() (session.PersistedState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record == nil {
		return session.PersistedState{}, false
	}
	return *f.record, true
}

func (f *FakeStorage) SaveCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCalls
}
