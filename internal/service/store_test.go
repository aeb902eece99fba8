package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/userhub/userhub-go/internal/model"
	"github.com/userhub/userhub-go/internal/repository"
)

// memStore is an in-memory UserStore with the same error contract as the
// MySQL repository, including the unique email constraint.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]model.User)}
}

func (m *memStore) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	m.nextID++
	now := time.Now().UTC()
	user.ID = m.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) List(_ context.Context) ([]model.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := []model.PublicUser{}
	for _, u := range m.users {
		users = append(users, u.Public())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memStore) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// racingStore never sees an existing email on lookup, as if a concurrent
// insert landed between the lookup and the write.
type racingStore struct {
	*memStore
}

func (racingStore) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (f failingStore) Create(context.Context, *model.User) error { return f.err }
func (f failingStore) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, f.err
}
func (f failingStore) GetByID(context.Context, int64) (*model.User, error) { return nil, f.err }
func (f failingStore) List(context.Context) ([]model.PublicUser, error)    { return nil, f.err }
func (f failingStore) Update(context.Context, *model.User) error          { return f.err }
func (f failingStore) Delete(context.Context, int64) error                { return f.err }
