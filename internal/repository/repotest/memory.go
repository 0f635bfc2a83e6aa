// Package repotest provides in-memory repositories for tests. They mirror
// the constraints the database enforces: unique email, cascading deletes
// and the role-conditional delete.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	accounts map[uuid.UUID]models.Account // keyed by user id
	sessions map[uuid.UUID]models.Session
	clock    time.Time

	// Err, when set, is returned by every repository call.
	Err error
	// Writes counts mutating calls that reached the store.
	Writes int

	Users    *UserRepo
	Sessions *SessionRepo
}

func NewStore() *Store {
	s := &Store{
		users:    make(map[uuid.UUID]models.User),
		accounts: make(map[uuid.UUID]models.Account),
		sessions: make(map[uuid.UUID]models.Session),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Users = &UserRepo{s: s}
	s.Sessions = &SessionRepo{s: s}
	return s
}

// tick hands out strictly increasing timestamps so ordering by creation
// time is deterministic.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Account returns the credential stored for a user, for assertions.
func (s *Store) Account(userID uuid.UUID) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	return a, ok
}

// SetRole changes a user's role directly, bypassing services.
func (s *Store) SetRole(id uuid.UUID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Role = role
		s.users[id] = u
	}
}

type UserRepo struct {
	s *Store
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) CreateWithAccount(_ context.Context, user *models.User, account *models.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := s.tick()
	user.CreatedAt, user.UpdatedAt = now, now

	account.UserID = user.ID
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.AccountID == "" {
		account.AccountID = user.ID.String()
	}
	account.CreatedAt, account.UpdatedAt = now, now

	s.users[user.ID] = *user
	s.accounts[user.ID] = *account
	s.Writes++
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) FindCredential(_ context.Context, userID uuid.UUID) (*models.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.accounts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *UserRepo) List(_ context.Context) ([]models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepo) Update(_ context.Context, id uuid.UUID, name, passwordHash *string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := s.tick()
	if name != nil {
		u.Name = *name
		u.UpdatedAt = now
		s.users[id] = u
	}
	if passwordHash != nil {
		a := s.accounts[id]
		if a.ID == uuid.Nil {
			a = models.Account{
				ID:         uuid.New(),
				UserID:     id,
				ProviderID: models.ProviderCredential,
				AccountID:  id.String(),
				CreatedAt:  now,
			}
		}
		a.Password = *passwordHash
		a.UpdatedAt = now
		s.accounts[id] = a
	}
	s.Writes++
	return &u, nil
}

func (r *UserRepo) DeleteNonAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	u, ok := s.users[id]
	if !ok || u.Role == models.RoleAdmin {
		return false, nil
	}
	s.deleteLocked(id)
	s.Writes++
	return true, nil
}

func (r *UserRepo) DeleteByEmail(_ context.Context, email string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for id, u := range s.users {
		if u.Email == email {
			s.deleteLocked(id)
		}
	}
	s.Writes++
	return nil
}

func (s *Store) deleteLocked(id uuid.UUID) {
	delete(s.users, id)
	delete(s.accounts, id)
	for sid, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, sid)
		}
	}
}

func (r *UserRepo) Promote(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = models.RoleAdmin
	u.EmailVerified = true
	s.users[id] = u
	s.Writes++
	return nil
}

func (r *UserRepo) Count(_ context.Context) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.users)), nil
}

type SessionRepo struct {
	s *Store
}

var _ repository.SessionRepository = (*SessionRepo)(nil)

func (r *SessionRepo) Create(_ context.Context, session *models.Session) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[session.UserID]; !ok {
		return repository.ErrNotFound
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = s.tick()
	s.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r *SessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if sess, ok := s.sessions[id]; ok {
		sess.Revoked = true
		s.sessions[id] = sess
	}
	return nil
}
