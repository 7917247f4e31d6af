package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopkit/auth-service/sessions"
)

var _ sessions.Store = (*FakeSessionStore)(nil)

// FakeSessionStore is an in-memory session store for tests. Setting FailWith
// makes every call return that error.
type FakeSessionStore struct {
	byUser   map[string]map[string]sessions.Session
	lock     sync.RWMutex
	FailWith error
	NowTime  func() time.Time
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{
		byUser:  make(map[string]map[string]sessions.Session),
		NowTime: time.Now,
	}
}

func (f *FakeSessionStore) Create(_ context.Context, userID, sessionID string) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.byUser[userID] == nil {
		f.byUser[userID] = make(map[string]sessions.Session)
	}
	if _, exists := f.byUser[userID][sessionID]; exists {
		return nil
	}
	now := f.NowTime()
	f.byUser[userID][sessionID] = sessions.Session{ID: sessionID, CreatedAt: now, LastActive: now}
	return nil
}

func (f *FakeSessionStore) List(_ context.Context, userID string) ([]sessions.Session, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.lock.RLock()
	defer f.lock.RUnlock()
	list := make([]sessions.Session, 0, len(f.byUser[userID]))
	for _, s := range f.byUser[userID] {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (f *FakeSessionStore) IsValid(_ context.Context, userID, sessionID string) (bool, error) {
	if f.FailWith != nil {
		return false, f.FailWith
	}
	f.lock.RLock()
	defer f.lock.RUnlock()
	_, ok := f.byUser[userID][sessionID]
	return ok, nil
}

func (f *FakeSessionStore) RefreshLastActive(_ context.Context, userID, sessionID string) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	session, ok := f.byUser[userID][sessionID]
	if !ok {
		return nil
	}
	if now := f.NowTime(); now.After(session.LastActive) {
		session.LastActive = now
	}
	f.byUser[userID][sessionID] = session
	return nil
}

func (f *FakeSessionStore) Invalidate(_ context.Context, userID, sessionID string) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.byUser[userID], sessionID)
	return nil
}
