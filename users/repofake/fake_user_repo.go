package repofake

import (
	"context"
	"sync"

	"github.com/shopkit/auth-service/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user repo for tests. Setting FailWith makes
// every call return that error, to exercise store-failure paths.
type FakeUserRepo struct {
	byEmail  map[string]*users.User
	idIndex  map[string]string
	lock     sync.RWMutex
	FailWith error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byEmail: make(map[string]*users.User),
		idIndex: make(map[string]string),
	}
}

func (r *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	copied := *user
	r.byEmail[user.Email] = &copied
	r.idIndex[user.ID] = user.Email
	return nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.lock.RLock()
	email, ok := r.idIndex[id]
	r.lock.RUnlock()
	if !ok {
		return nil, users.ErrNotFound
	}
	return r.GetByEmail(context.Background(), email)
}

func (r *FakeUserRepo) Delete(_ context.Context, email string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if user, ok := r.byEmail[email]; ok {
		delete(r.idIndex, user.ID)
		delete(r.byEmail, email)
	}
	return nil
}
