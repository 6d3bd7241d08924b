// Package memory implements the repositories in process. It backs the test
// suites and single-node development runs with STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// Store holds every collection behind one lock so that conditional updates
// are atomic with respect to each other.
type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	tasks   map[string]domain.Task
	tickets map[string]domain.Ticket
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:   make(map[string]domain.User),
		tasks:   make(map[string]domain.Task),
		tickets: make(map[string]domain.Ticket),
		now:     time.Now,
	}
}

// Stores exposes the store through the repository interfaces.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Users:   Users{s},
		Tasks:   Tasks{s},
		Tickets: Tickets{s},
		Close:   func(context.Context) error { return nil },
	}
}

func (s *Store) stamp() time.Time { return s.now().UTC() }

// Users implements repository.UserRepository.
type Users struct{ s *Store }

func (r Users) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = domain.NormalizeEmail(user.Email)
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return apperrors.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.s.stamp()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r Users) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	email := domain.NormalizeEmail(user.Email)
	for id, existing := range r.s.users {
		if id != user.ID && existing.Email == email {
			return apperrors.ErrDuplicate
		}
	}
	stored.Name = user.Name
	stored.Email = email
	stored.Role = user.Role
	stored.ManagerID = copyString(user.ManagerID)
	stored.MobileNumber = user.MobileNumber
	stored.CompanyEmail = user.CompanyEmail
	stored.PersonalEmail = user.PersonalEmail
	stored.Department = user.Department
	stored.JobDescription = user.JobDescription
	stored.ProfileImage = user.ProfileImage
	stored.UpdatedAt = r.s.stamp()
	user.UpdatedAt = stored.UpdatedAt
	r.s.users[user.ID] = stored
	return nil
}

func (r Users) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.users, id)
	for uid, u := range r.s.users {
		if u.Manager() == id {
			u.ManagerID = nil
			r.s.users[uid] = u
		}
	}
	return nil
}

func (r Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r Users) GetByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r Users) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.User
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ManagerID != "" && u.Manager() != filter.ManagerID {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r Users) ListByManager(ctx context.Context, managerID string) ([]domain.User, error) {
	if managerID == "" {
		return nil, nil
	}
	users, err := r.List(ctx, repository.UserFilter{ManagerID: managerID, Limit: -1})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r Users) SetVerificationToken(_ context.Context, id, hash string, expires time.Time) error {
	return r.mutate(id, func(u *domain.User) { u.SetVerificationToken(hash, expires) })
}

func (r Users) SetResetToken(_ context.Context, id, hash string, expires time.Time) error {
	return r.mutate(id, func(u *domain.User) { u.SetResetToken(hash, expires) })
}

func (r Users) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *domain.User) { u.LastLoginAt = &at })
}

func (r Users) ConsumeVerificationToken(_ context.Context, hash string, now time.Time) (*domain.User, error) {
	return r.consume(func(u *domain.User) bool { return u.VerificationTokenMatches(hash, now) }, func(u *domain.User) {
		u.IsVerified = true
		u.ClearVerificationToken()
	})
}

func (r Users) ConsumeResetToken(_ context.Context, hash string, now time.Time, passwordHash string) (*domain.User, error) {
	return r.consume(func(u *domain.User) bool { return u.ResetTokenMatches(hash, now) }, func(u *domain.User) {
		u.PasswordHash = passwordHash
		u.ClearResetToken()
	})
}

func (r Users) FindByResetToken(_ context.Context, hash string, now time.Time) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.ResetTokenMatches(hash, now) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// consume finds the single user matching and applies change under the write
// lock, which makes match-and-clear one step.
func (r Users) consume(match func(*domain.User) bool, change func(*domain.User)) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, u := range r.s.users {
		if !match(&u) {
			continue
		}
		change(&u)
		u.UpdatedAt = r.s.stamp()
		r.s.users[id] = u
		out := cloneUser(u)
		return &out, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r Users) mutate(id string, change func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	change(&u)
	u.UpdatedAt = r.s.stamp()
	r.s.users[id] = u
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUser(u domain.User) domain.User {
	u.ManagerID = copyString(u.ManagerID)
	u.EmailVerificationToken = copyString(u.EmailVerificationToken)
	u.EmailVerificationExpires = copyTime(u.EmailVerificationExpires)
	u.ResetPasswordToken = copyString(u.ResetPasswordToken)
	u.ResetPasswordExpires = copyTime(u.ResetPasswordExpires)
	u.LastLoginAt = copyTime(u.LastLoginAt)
	return u
}
