package main

import (
	"context"
	"sort"
	"sync"

	"rolesapi/internal/domain/roles"
	"rolesapi/internal/domain/storage"
	"rolesapi/internal/domain/users"
)

// memStore stands in for *storage.Container. Units of work run directly
// against the in-memory stores.
type memStore struct {
	roles   roles.Store
	users   users.Store
	pingErr error
}

func newMemStore(db *memDB) *memStore {
	return &memStore{roles: &memRoles{db}, users: &memUsers{db}}
}

func (s *memStore) Roles() roles.Store { return s.roles }
func (s *memStore) Users() users.Store { return s.users }

func (s *memStore) WithTx(ctx context.Context, fn func(tx *storage.Tx) error) error {
	return fn(&storage.Tx{Roles: s.roles, Users: s.users})
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }

// memDB backs the in-memory role and user stores used by handler tests. It
// enforces the same constraints as the schema: unique role names and emails,
// an existing role for every user, and restricted role deletes.
type memDB struct {
	mu         sync.Mutex
	roles      map[int64]roles.Role
	users      map[int64]users.User
	nextRoleID int64
	nextUserID int64
}

func newMemDB() *memDB {
	return &memDB{
		roles: map[int64]roles.Role{},
		users: map[int64]users.User{},
	}
}

type memRoles struct{ db *memDB }

func (m *memRoles) List(ctx context.Context) ([]roles.Role, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	list := []roles.Role{}
	for _, r := range m.db.roles {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memRoles) GetByID(ctx context.Context, id int64) (*roles.Role, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	r, ok := m.db.roles[id]
	if !ok {
		return nil, roles.ErrNotFound
	}
	return &r, nil
}

func (m *memRoles) Exists(ctx context.Context, id int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	_, ok := m.db.roles[id]
	return ok, nil
}

func (m *memRoles) nameTaken(name string, excludeID int64) bool {
	for _, r := range m.db.roles {
		if r.Name == name && r.ID != excludeID {
			return true
		}
	}
	return false
}

func (m *memRoles) Create(ctx context.Context, role *roles.Role) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.nameTaken(role.Name, 0) {
		return roles.ErrDuplicateName
	}
	m.db.nextRoleID++
	role.ID = m.db.nextRoleID
	m.db.roles[role.ID] = *role
	return nil
}

func (m *memRoles) Update(ctx context.Context, role *roles.Role) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.roles[role.ID]; !ok {
		return roles.ErrNotFound
	}
	if m.nameTaken(role.Name, role.ID) {
		return roles.ErrDuplicateName
	}
	m.db.roles[role.ID] = *role
	return nil
}

func (m *memRoles) Delete(ctx context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.roles[id]; !ok {
		return roles.ErrNotFound
	}
	for _, u := range m.db.users {
		if u.RoleID == id {
			return roles.ErrInUse
		}
	}
	delete(m.db.roles, id)
	return nil
}

type memUsers struct{ db *memDB }

func (m *memUsers) resolve(u users.User) users.User {
	r := m.db.roles[u.RoleID]
	u.Role = &r
	return u
}

func (m *memUsers) filter(keep func(users.User) bool) []users.User {
	list := []users.User{}
	for _, u := range m.db.users {
		if keep(u) {
			list = append(list, m.resolve(u))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (m *memUsers) List(ctx context.Context) ([]users.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	return m.filter(func(users.User) bool { return true }), nil
}

func (m *memUsers) ListByRole(ctx context.Context, roleID int64) ([]users.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	return m.filter(func(u users.User) bool { return u.RoleID == roleID }), nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*users.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	u, ok := m.db.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u = m.resolve(u)
	return &u, nil
}

func (m *memUsers) emailTaken(email string, excludeID int64) bool {
	for _, u := range m.db.users {
		if u.Email == email && u.ID != excludeID {
			return true
		}
	}
	return false
}

func (m *memUsers) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	return m.emailTaken(email, excludeID), nil
}

func (m *memUsers) check(user *users.User) error {
	if _, ok := m.db.roles[user.RoleID]; !ok {
		return users.ErrUnknownRole
	}
	if m.emailTaken(user.Email, user.ID) {
		return users.ErrDuplicateEmail
	}
	return nil
}

func (m *memUsers) Create(ctx context.Context, user *users.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if err := m.check(user); err != nil {
		return err
	}
	m.db.nextUserID++
	user.ID = m.db.nextUserID
	stored := *user
	stored.Role = nil
	m.db.users[user.ID] = stored
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *users.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[user.ID]; !ok {
		return users.ErrNotFound
	}
	if err := m.check(user); err != nil {
		return err
	}
	stored := *user
	stored.Role = nil
	m.db.users[user.ID] = stored
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[id]; !ok {
		return users.ErrNotFound
	}
	delete(m.db.users, id)
	return nil
}
