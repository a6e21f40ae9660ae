package identity

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// SQLUserStore reads local accounts from the gateway database.
type SQLUserStore struct{ db *sql.DB }

func NewSQLUserStore(db *sql.DB) *SQLUserStore { return &SQLUserStore{db: db} }

func (s *SQLUserStore) Lookup(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, pass_hash, role FROM users WHERE username=$1`,
		username).Scan(&u.ID, &u.Username, &u.PassHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// MemoryUserStore is for offline mode and tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[string]User{}}
}

func (s *MemoryUserStore) Put(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
}

func (s *MemoryUserStore) Lookup(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}
