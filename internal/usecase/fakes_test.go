package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"estate-api/internal/data/entity"
	"estate-api/internal/data/repository"
	"estate-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore backs the user, auth state and bootstrap repositories plus the
// transactor with plain maps. A failed transaction restores the snapshot.
type memStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]entity.User
	states map[uuid.UUID]entity.AuthState
	admin  *uuid.UUID

	// beforeCAS runs right before a compare-and-swap is applied
	beforeCAS func(s *memStore, userID uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uuid.UUID]entity.User),
		states: make(map[uuid.UUID]entity.AuthState),
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:      memUsers{m},
		AuthState: memStates{m},
		Bootstrap: memBootstrap{m},
		Tx:        m,
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	users := make(map[uuid.UUID]entity.User, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	states := make(map[uuid.UUID]entity.AuthState, len(m.states))
	for k, v := range m.states {
		states[k] = v
	}
	admin := m.admin
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.users, m.states, m.admin = users, states, admin
		m.mu.Unlock()
		return err
	}
	return nil
}

// state returns a copy of the stored auth state for assertions.
func (m *memStore) state(userID uuid.UUID) entity.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID]
}

func (m *memStore) expire(userID uuid.UUID, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[userID]
	st.TokenExpiration = &at
	st.OTPExpiration = &at
	if st.ResetPasswordToken != "" {
		st.ResetTokenExpiration = &at
	}
	m.states[userID] = st
}

func (m *memStore) withVerified(u entity.User) *entity.User {
	st, ok := m.states[u.ID]
	u.Verified = ok && st.Status == entity.StatusVerified
	return &u
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.DeletedAt != nil {
			continue
		}
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", &repository.DuplicateError{Field: "email"})
		}
		if u.Phone == user.Phone {
			return fmt.Errorf("create user: %w", &repository.DuplicateError{Field: "phone"})
		}
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) findBy(match func(entity.User) bool) *entity.User {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.DeletedAt == nil && match(u) {
			return r.m.withVerified(u)
		}
	}
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findBy(func(u entity.User) bool { return u.ID == id }), nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findBy(func(u entity.User) bool { return u.Email == email }), nil
}

func (r memUsers) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	return r.findBy(func(u entity.User) bool { return u.Phone == phone }), nil
}

func (r memUsers) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []*entity.User
	for _, u := range r.m.users {
		if u.DeletedAt == nil {
			all = append(all, r.m.withVerified(u))
		}
	}
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r memUsers) CountAll(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, u := range r.m.users {
		if u.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r memUsers) mutate(id uuid.UUID, fn func(u *entity.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok || u.DeletedAt != nil {
		return repository.ErrNotFound
	}
	fn(&u)
	r.m.users[id] = u
	return nil
}

func (r memUsers) Update(_ context.Context, user *entity.User) error {
	return r.mutate(user.ID, func(u *entity.User) {
		u.FullName, u.Gender, u.Avatar, u.Role, u.UpdatedAt = user.FullName, user.Gender, user.Avatar, user.Role, user.UpdatedAt
	})
}

func (r memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.mutate(id, func(u *entity.User) { u.PasswordHash = hash })
}

func (r memUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.mutate(id, func(u *entity.User) { u.LastLogin = &at })
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(u *entity.User) {
		now := time.Now()
		u.DeletedAt = &now
	})
}

type memStates struct{ m *memStore }

func (r memStates) Create(_ context.Context, state *entity.AuthState) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if state.Version == 0 {
		state.Version = 1
	}
	r.m.states[state.UserID] = *state
	return nil
}

func (r memStates) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.AuthState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st, ok := r.m.states[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r memStates) CompareAndSwap(_ context.Context, next *entity.AuthState) error {
	if hook := r.m.beforeCAS; hook != nil {
		hook(r.m, next.UserID)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.states[next.UserID]
	if !ok || cur.Version != next.Version {
		return repository.ErrStaleState
	}
	next.Version++
	r.m.states[next.UserID] = *next
	return nil
}

type memBootstrap struct{ m *memStore }

func (r memBootstrap) ClaimAdmin(_ context.Context, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.admin != nil {
		return false, nil
	}
	r.m.admin = &userID
	return true, nil
}

// recordingNotifier keeps the last proof sent to each address.
type recordingNotifier struct {
	mu       sync.Mutex
	tokens   map[string]string
	otps     map[string]string
	resets   map[string]string
	welcomed []string
	emailErr error
	smsErr   error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		tokens: make(map[string]string),
		otps:   make(map[string]string),
		resets: make(map[string]string),
	}
}

func (n *recordingNotifier) SendVerificationEmail(_ context.Context, user *entity.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.emailErr != nil {
		return n.emailErr
	}
	n.tokens[user.Email] = token
	return nil
}

func (n *recordingNotifier) SendNewVerificationEmail(ctx context.Context, user *entity.User, token string, exp time.Time) error {
	return n.SendVerificationEmail(ctx, user, token, exp)
}

func (n *recordingNotifier) SendWelcome(_ context.Context, user *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, user.Email)
	return nil
}

func (n *recordingNotifier) SendResetLink(_ context.Context, user *entity.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.emailErr != nil {
		return n.emailErr
	}
	n.resets[user.Email] = token
	return nil
}

func (n *recordingNotifier) SendOTP(_ context.Context, phone, otp string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.smsErr != nil {
		return n.smsErr
	}
	n.otps[phone] = otp
	return nil
}

type countingThrottle struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
}

func (t *countingThrottle) Allow(_ context.Context, scope, subject string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[scope+":"+subject]++
	return t.counts[scope+":"+subject] <= t.limit
}

type memGuard struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
	locked   map[string]bool
}

func (g *memGuard) Locked(_ context.Context, email string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked[email]
}

func (g *memGuard) RecordFailure(_ context.Context, email string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[email]++
	if g.failures[email] >= g.max {
		g.locked[email] = true
		g.failures[email] = 0
		return true
	}
	return false
}

func (g *memGuard) Reset(_ context.Context, email string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, email)
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *memRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = expiresAt
	return nil
}

func newTestConfig() *utils.Config {
	return &utils.Config{
		OTP: utils.OTPConfig{ExpiryMinutes: 15, Length: 6},
		Auth: utils.AuthConfig{
			TokenExpiryMinutes:      15,
			ResetTokenExpiryMinutes: 15,
			ResendLimit:             3,
			ResendWindowMinutes:     15,
			MaxFailedLogins:         5,
			LockoutMinutes:          15,
		},
	}
}

type testEnv struct {
	store    *memStore
	notifier *recordingNotifier
	revoker  *memRevoker
	tokens   *utils.TokenManager
	clock    *time.Time
	auth     *authService
	users    UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	env := &testEnv{
		store:    store,
		notifier: newRecordingNotifier(),
		revoker:  &memRevoker{revoked: make(map[string]time.Time)},
		tokens:   utils.NewTokenManager("test-secret", time.Hour),
	}
	clock := time.Now().UTC()
	env.clock = &clock

	deps := AuthDeps{
		Tokens:   env.tokens,
		Revoker:  env.revoker,
		Notifier: env.notifier,
		Throttle: &countingThrottle{limit: 3, counts: make(map[string]int)},
		Guard:    &memGuard{max: 5, failures: make(map[string]int), locked: make(map[string]bool)},
	}

	svc := NewAuthService(store.repository(), newTestConfig(), deps, zap.NewNop()).(*authService)
	svc.now = func() time.Time { return *env.clock }
	env.auth = svc
	env.users = NewUserService(store.repository().User, zap.NewNop())
	return env
}

func (e *testEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}
