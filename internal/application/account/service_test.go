package account

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-api-accounts/internal/application/verification"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/infrastructure/smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

// memAccountStore enforces email uniqueness in Create the way the accounts
// unique index does. With racyLookup set, GetByEmail always misses so the
// Create check is the only guard.
type memAccountStore struct {
	mu         sync.Mutex
	byID       map[string]*domain.Account
	racyLookup bool
	getErr     error
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{byID: map[string]*domain.Account{}}
}

func (m *memAccountStore) findEmail(email string) *domain.Account {
	for _, a := range m.byID {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (m *memAccountStore) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findEmail(a.Email) != nil {
		return nil, domain.ErrEmailTaken
	}
	now := time.Now().UTC()
	cp := *a
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.byID[cp.AccountID] = &cp
	out := cp
	return &out, nil
}

func (m *memAccountStore) Get(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.racyLookup {
		return nil, domain.ErrAccountNotFound
	}
	a := m.findEmail(email)
	if a == nil {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountStore) MarkVerified(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.findEmail(email)
	if a == nil {
		return domain.ErrAccountNotFound
	}
	a.Verified = true
	return nil
}

func (m *memAccountStore) UpdateProfile(_ context.Context, accountID, username, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if other := m.findEmail(email); other != nil && other.AccountID != accountID {
		return domain.ErrEmailTaken
	}
	a.Username, a.Email = username, email
	return nil
}

func (m *memAccountStore) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.findEmail(email)
	if a == nil {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *memAccountStore) UpdateRole(_ context.Context, email string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.findEmail(email)
	if a == nil {
		return domain.ErrAccountNotFound
	}
	a.Role = role
	return nil
}

func (m *memAccountStore) DeleteByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.findEmail(email)
	if a == nil {
		return domain.ErrAccountNotFound
	}
	delete(m.byID, a.AccountID)
	return nil
}

func (m *memAccountStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memOTPStore struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{records: map[string]domain.OTPRecord{}}
}

func (m *memOTPStore) Put(_ context.Context, rec *domain.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Email] = *rec
	return nil
}

func (m *memOTPStore) GetByEmail(_ context.Context, email string) (*domain.OTPRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[email]
	if !ok {
		return nil, domain.ErrNoPendingVerification
	}
	return &rec, nil
}

func (m *memOTPStore) DeleteByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, email)
	return nil
}

func (m *memOTPStore) has(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[email]
	return ok
}

func (m *memOTPStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []smtp.Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, m smtp.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, m)
	return nil
}

var codeRe = regexp.MustCompile(`Enter (\d{4}) in the app`)

func (c *captureMailer) codeFor(t *testing.T, to string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].To == to {
			m := codeRe.FindStringSubmatch(c.sent[i].Text)
			require.Len(t, m, 2)
			return m[1]
		}
	}
	t.Fatalf("no email sent to %s", to)
	return ""
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) IssuePair(a *domain.Account) (*domain.Tokens, error) {
	args := m.Called(a)
	t, _ := args.Get(0).(*domain.Tokens)
	return t, args.Error(1)
}

type harness struct {
	svc        Service
	verifier   verification.Service
	accounts   *memAccountStore
	otps       *memOTPStore
	mailer     *captureMailer
	tokens     *mockTokens
	dispatcher *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		accounts:   newMemAccountStore(),
		otps:       newMemOTPStore(),
		mailer:     &captureMailer{},
		tokens:     new(mockTokens),
		dispatcher: NewDispatcher(5 * time.Second),
	}
	h.verifier = verification.NewService(verification.ServiceDeps{
		OTPRepo:     h.otps,
		AccountRepo: h.accounts,
		Mailer:      h.mailer,
		TTL:         time.Hour,
		HashCost:    bcrypt.MinCost,
	})
	h.svc = NewService(ServiceDeps{
		AccountRepo: h.accounts,
		OTPRepo:     h.otps,
		Verifier:    h.verifier,
		Tokens:      h.tokens,
		Dispatcher:  h.dispatcher,
		HashCost:    bcrypt.MinCost,
	})
	return h
}

func (h *harness) seed(t *testing.T, username, email, password string, role domain.Role, verified bool) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	a, err := h.accounts.Create(context.Background(), &domain.Account{
		AccountID: "id-" + username, Username: username, Email: email,
		PasswordHash: string(hash), Role: role, Verified: verified,
	})
	require.NoError(t, err)
	return a
}

func regReq(email string) domain.RegisterRequest {
	return domain.RegisterRequest{Username: "alice", Email: email, Password: "correct-horse"}
}

// --- Register ---

func TestRegister_CreatesUnverifiedAccountAndOneOTP(t *testing.T) {
	h := newHarness(t)

	a, err := h.svc.Register(context.Background(), regReq("a@x.com"))
	require.NoError(t, err)
	h.dispatcher.Wait()

	assert.NotEmpty(t, a.AccountID)
	assert.False(t, a.Verified)
	assert.Equal(t, domain.RoleUser, a.Role)
	assert.NotEqual(t, "correct-horse", a.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("correct-horse")))

	assert.Equal(t, 1, h.accounts.count())
	assert.Equal(t, 1, h.otps.count())
	rec, err := h.otps.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.AccountID, rec.AccountID)
}

func TestRegister_DistinctIDsPerAccount(t *testing.T) {
	h := newHarness(t)

	a, err := h.svc.Register(context.Background(), regReq("a@x.com"))
	require.NoError(t, err)
	b, err := h.svc.Register(context.Background(), regReq("b@x.com"))
	require.NoError(t, err)
	h.dispatcher.Wait()

	assert.NotEqual(t, a.AccountID, b.AccountID)
	recA, _ := h.otps.GetByEmail(context.Background(), "a@x.com")
	recB, _ := h.otps.GetByEmail(context.Background(), "b@x.com")
	assert.Equal(t, a.AccountID, recA.AccountID)
	assert.Equal(t, b.AccountID, recB.AccountID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Register(context.Background(), regReq("a@x.com"))
	require.NoError(t, err)

	_, err = h.svc.Register(context.Background(), regReq("A@x.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	h.dispatcher.Wait()
	assert.Equal(t, 1, h.accounts.count())
}

func TestRegister_ConcurrentSameEmailOnlyOneWins(t *testing.T) {
	h := newHarness(t)
	h.accounts.racyLookup = true

	const n = 16
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.svc.Register(context.Background(), regReq("race@x.com"))
		}(i)
	}
	close(start)
	wg.Wait()
	h.dispatcher.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrEmailTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, taken)
	assert.Equal(t, 1, h.accounts.count())
	assert.Equal(t, 1, h.otps.count())
}

func TestRegister_EmailFailureStillCreatesAccount(t *testing.T) {
	h := newHarness(t)
	h.mailer.err = errors.New("smtp down")

	a, err := h.svc.Register(context.Background(), regReq("a@x.com"))
	require.NoError(t, err)
	h.dispatcher.Wait()

	assert.Equal(t, 1, h.accounts.count())
	// The record is kept so a resend can recover.
	assert.True(t, h.otps.has(a.Email))

	h.mailer.err = nil
	require.NoError(t, h.verifier.ResendOTP(context.Background(), "a@x.com"))
	_, err = h.verifier.VerifyOTP(context.Background(), "a@x.com", h.mailer.codeFor(t, "a@x.com"))
	require.NoError(t, err)
}

func TestRegister_CancelledRequestStillDeliversOTP(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := h.svc.Register(ctx, regReq("a@x.com"))
	require.NoError(t, err)
	cancel()
	h.dispatcher.Wait()

	assert.True(t, h.otps.has("a@x.com"))
	assert.Len(t, h.mailer.sent, 1)
}

func TestRegister_LookupFailure(t *testing.T) {
	h := newHarness(t)
	h.accounts.getErr = domain.ErrTransientStore

	_, err := h.svc.Register(context.Background(), regReq("a@x.com"))
	assert.ErrorIs(t, err, domain.ErrTransientStore)
	assert.Equal(t, 0, h.accounts.count())
}

// --- round trip + Login ---

func TestRegisterVerifyLogin_RoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, regReq("a@x.com"))
	require.NoError(t, err)
	h.dispatcher.Wait()

	_, err = h.svc.Login(ctx, domain.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrNotVerified)

	_, err = h.verifier.VerifyOTP(ctx, "a@x.com", h.mailer.codeFor(t, "a@x.com"))
	require.NoError(t, err)

	tokens := &domain.Tokens{AccessToken: "access", RefreshToken: "refresh"}
	h.tokens.On("IssuePair", mock.MatchedBy(func(a *domain.Account) bool { return a.Email == "a@x.com" })).Return(tokens, nil)

	res, err := h.svc.Login(ctx, domain.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, res.Account.Verified)
	assert.Equal(t, tokens, res.Tokens)
	h.tokens.AssertExpectations(t)
}

func TestLogin_WrongPasswordOnUnverifiedIsInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "a@x.com", "correct-horse", domain.RoleUser, false)

	_, err := h.svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, domain.ErrNotVerified)
}

func TestLogin_UnknownEmailIsSameError(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "a@x.com", "correct-horse", domain.RoleUser, true)

	_, errUnknown := h.svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@x.com", Password: "correct-horse"})
	_, errWrong := h.svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "nope"})
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_TokenFailureIsInternal(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "a@x.com", "correct-horse", domain.RoleUser, true)
	h.tokens.On("IssuePair", mock.Anything).Return(nil, errors.New("no key"))

	_, err := h.svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrInternal)
}

// --- authorized mutations ---

func caller(a *domain.Account) domain.Caller {
	return domain.Caller{AccountID: a.AccountID, Email: a.Email, Role: a.Role}
}

func TestFetch_SelfAndAdmin(t *testing.T) {
	h := newHarness(t)
	alice := h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)
	bob := h.seed(t, "bob", "b@x.com", "pw-bob-12", domain.RoleSuperuser, true)
	admin := h.seed(t, "root", "r@x.com", "pw-root-1", domain.RoleAdmin, true)
	ctx := context.Background()

	got, err := h.svc.Fetch(ctx, caller(alice), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = h.svc.Fetch(ctx, caller(bob), alice.AccountID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.Fetch(ctx, caller(admin), alice.AccountID)
	assert.NoError(t, err)

	_, err = h.svc.Fetch(ctx, caller(admin), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestFetch_UnknownRoleForbidden(t *testing.T) {
	h := newHarness(t)
	alice := h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)

	_, err := h.svc.Fetch(context.Background(), domain.Caller{AccountID: alice.AccountID, Role: "guest"}, alice.AccountID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateProfile_ChangesEmailAndDropsPendingOTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.svc.Register(ctx, regReq("a@x.com"))
	require.NoError(t, err)
	h.dispatcher.Wait()
	require.True(t, h.otps.has("a@x.com"))

	updated, err := h.svc.UpdateProfile(ctx, caller(a), a.AccountID, domain.UpdateProfileRequest{Username: "alicia", Email: "new@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	assert.Equal(t, "new@x.com", updated.Email)
	assert.False(t, h.otps.has("a@x.com"))
}

func TestUpdateProfile_EmailCollision(t *testing.T) {
	h := newHarness(t)
	alice := h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)
	h.seed(t, "bob", "b@x.com", "pw-bob-12", domain.RoleUser, true)

	_, err := h.svc.UpdateProfile(context.Background(), caller(alice), alice.AccountID,
		domain.UpdateProfileRequest{Username: "alice", Email: "b@x.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUpdatePassword_SelfThenLoginWithNewPassword(t *testing.T) {
	h := newHarness(t)
	alice := h.seed(t, "alice", "a@x.com", "old-password", domain.RoleUser, true)
	h.tokens.On("IssuePair", mock.Anything).Return(&domain.Tokens{AccessToken: "t"}, nil)
	ctx := context.Background()

	require.NoError(t, h.svc.UpdatePassword(ctx, caller(alice), domain.UpdatePasswordRequest{Email: "a@x.com", Password: "new-password"}))

	_, err := h.svc.Login(ctx, domain.LoginRequest{Email: "a@x.com", Password: "old-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	res, err := h.svc.Login(ctx, domain.LoginRequest{Email: "a@x.com", Password: "new-password"})
	require.NoError(t, err)
	assert.True(t, res.Account.Verified)
}

func TestUpdatePassword_OtherAccountForbidden(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)
	bob := h.seed(t, "bob", "b@x.com", "pw-bob-12", domain.RoleUser, true)

	err := h.svc.UpdatePassword(context.Background(), caller(bob), domain.UpdatePasswordRequest{Email: "a@x.com", Password: "hijacked!"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdatePassword_NotFound(t *testing.T) {
	h := newHarness(t)
	admin := h.seed(t, "root", "r@x.com", "pw-root-1", domain.RoleSuperadmin, true)

	err := h.svc.UpdatePassword(context.Background(), caller(admin), domain.UpdatePasswordRequest{Email: "ghost@x.com", Password: "whatever1"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestUpdateRole(t *testing.T) {
	h := newHarness(t)
	alice := h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)
	admin := h.seed(t, "root", "r@x.com", "pw-root-1", domain.RoleAdmin, true)
	super := h.seed(t, "su", "s@x.com", "pw-super-1", domain.RoleSuperuser, true)
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  domain.Caller
		req     domain.UpdateRoleRequest
		wantErr error
	}{
		{"superuser cannot change roles", caller(super), domain.UpdateRoleRequest{Email: "a@x.com", AccountType: "admin"}, domain.ErrForbidden},
		{"user cannot promote self", caller(alice), domain.UpdateRoleRequest{Email: "a@x.com", AccountType: "superadmin"}, domain.ErrForbidden},
		{"empty email", caller(admin), domain.UpdateRoleRequest{AccountType: "admin"}, domain.ErrBadRequest},
		{"unknown type", caller(admin), domain.UpdateRoleRequest{Email: "a@x.com", AccountType: "owner"}, domain.ErrBadRequest},
		{"missing account", caller(admin), domain.UpdateRoleRequest{Email: "ghost@x.com", AccountType: "admin"}, domain.ErrAccountNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.UpdateRole(ctx, tc.caller, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	got, err := h.svc.UpdateRole(ctx, caller(admin), domain.UpdateRoleRequest{Email: "a@x.com", AccountType: "superuser"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperuser, got.Role)
	assert.True(t, got.Verified)
}

func TestDelete_CascadesOTPRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.svc.Register(ctx, regReq("a@x.com"))
	require.NoError(t, err)
	h.dispatcher.Wait()
	require.True(t, h.otps.has("a@x.com"))

	require.NoError(t, h.svc.Delete(ctx, caller(a), "a@x.com"))
	h.dispatcher.Wait()

	assert.Equal(t, 0, h.accounts.count())
	assert.False(t, h.otps.has("a@x.com"))

	err = h.verifier.ResendOTP(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDelete_ForbiddenAndNotFound(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)
	bob := h.seed(t, "bob", "b@x.com", "pw-bob-12", domain.RoleUser, true)
	admin := h.seed(t, "root", "r@x.com", "pw-root-1", domain.RoleSuperadmin, true)
	ctx := context.Background()

	assert.ErrorIs(t, h.svc.Delete(ctx, caller(bob), "a@x.com"), domain.ErrForbidden)
	assert.ErrorIs(t, h.svc.Delete(ctx, caller(admin), "ghost@x.com"), domain.ErrAccountNotFound)
	assert.NoError(t, h.svc.Delete(ctx, caller(admin), "a@x.com"))
	h.dispatcher.Wait()
}

func TestRegister_MultibytePasswordOver72BytesIsBadRequest(t *testing.T) {
	h := newHarness(t)
	req := regReq("a@x.com")
	req.Password = strings.Repeat("é", 40)

	_, err := h.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.NotErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, 0, h.accounts.count())
}

func TestUpdatePassword_MultibytePasswordOver72BytesIsBadRequest(t *testing.T) {
	h := newHarness(t)
	alice := h.seed(t, "alice", "a@x.com", "old-password", domain.RoleUser, true)

	err := h.svc.UpdatePassword(context.Background(), caller(alice),
		domain.UpdatePasswordRequest{Email: "a@x.com", Password: strings.Repeat("é", 40)})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestNonAdmin_OtherEmailsForbiddenBeforeLookup(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "a@x.com", "pw-alice-1", domain.RoleUser, true)
	bob := h.seed(t, "bob", "b@x.com", "pw-bob-12", domain.RoleUser, true)
	ctx := context.Background()
	h.accounts.getErr = errors.New("store must not be queried")

	for _, email := range []string{"a@x.com", "ghost@x.com"} {
		err := h.svc.UpdatePassword(ctx, caller(bob), domain.UpdatePasswordRequest{Email: email, Password: "new-password"})
		assert.ErrorIs(t, err, domain.ErrForbidden, email)
		assert.ErrorIs(t, h.svc.Delete(ctx, caller(bob), email), domain.ErrForbidden, email)
	}
}
