package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/config"
	"github.com/sc619/authd/internal/pkg/goerror"
	"github.com/sc619/authd/internal/pkg/goroutine"
	"github.com/sc619/authd/internal/pkg/hash"
	"github.com/sc619/authd/internal/pkg/instrument"
	"github.com/sc619/authd/internal/pkg/jwt"
	"github.com/sc619/authd/internal/pkg/uid"
	"github.com/sc619/authd/internal/pkg/validator"
)

const testConfigYAML = `
otp:
  length: 7
  alphabet: "0123456789"
  attempts: 3
  cooldown_minutes: 1
`

// memDB is an in-memory repoDB implementation.
type memDB struct {
	mu           sync.Mutex
	users        map[int64]*entity.User
	otps         map[string]entity.OTPRecord
	transactions map[int64]*entity.AuthTransaction
	addresses    map[int64]entity.Address
	mobiles      map[int64]entity.ExtraMobile
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[int64]*entity.User{},
		otps:         map[string]entity.OTPRecord{},
		transactions: map[int64]*entity.AuthTransaction{},
		addresses:    map[int64]entity.Address{},
		mobiles:      map[int64]entity.ExtraMobile{},
	}
}

func (m *memDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) findUser(match func(*entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.findUser(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memDB) GetUserByMobile(_ context.Context, mobile string) (*entity.User, error) {
	return m.findUser(func(u *entity.User) bool { return u.Mobile == mobile })
}

func (m *memDB) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.findUser(func(u *entity.User) bool { return u.Username == username })
}

func (m *memDB) CountUsersByProperty(_ context.Context, prop entity.UniqueProperty, value string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, u := range m.users {
		switch prop {
		case entity.PropertyEmail:
			if strings.EqualFold(u.Email, value) {
				count++
			}
		case entity.PropertyMobile:
			if u.Mobile == value {
				count++
			}
		case entity.PropertyUsername:
			if u.Username == value {
				count++
			}
		}
	}
	return count, nil
}

func (m *memDB) CreateUser(_ context.Context, in entity.NewUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, in.Email) || u.Username == in.Username {
			return goerror.ErrConflict
		}
	}
	m.users[in.ID] = &entity.User{
		ID:       in.ID,
		Username: in.Username,
		Email:    in.Email,
		Mobile:   in.Mobile,
		Name:     in.Name,
		LastName: in.LastName,
		Password: in.Password,
		IsActive: in.IsActive,
	}
	return nil
}

func (m *memDB) UpdateUserProfile(_ context.Context, in entity.PatchUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[in.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	return nil
}

func (m *memDB) UpdateUserPassword(_ context.Context, userID int64, hashed string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	u.Password = hashed
	return nil
}

func (m *memDB) UpdateUserLastLogin(_ context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (m *memDB) GetOTP(_ context.Context, destination string) (*entity.OTPRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.otps[destination]; ok {
		cp := rec
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) GetActiveOTP(_ context.Context, destination string) (*entity.OTPRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.otps[destination]; ok && !rec.IsValidated {
		cp := rec
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) IsOTPCodeActive(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.otps {
		if rec.Code == code && !rec.IsValidated {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) UpsertOTP(_ context.Context, rec entity.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[rec.Destination] = rec
	return nil
}

func (m *memDB) CreateAuthTransaction(_ context.Context, in entity.AuthTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := in
	m.transactions[in.ID] = &cp
	return nil
}

func (m *memDB) GetAuthTransactionByRefreshToken(_ context.Context, token string) (*entity.AuthTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.transactions {
		if tx.RefreshToken == token {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) UpdateAuthTransactionToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[id]
	if !ok {
		return goerror.ErrNotFound
	}
	tx.Token = token
	tx.ExpiresAt = expiresAt
	return nil
}

func (m *memDB) GetAddressesByUserID(_ context.Context, userID int64) ([]entity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Address{}
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memDB) GetAddressByID(_ context.Context, id, userID int64) (*entity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.addresses[id]; ok && a.UserID == userID {
		cp := a
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) CreateAddress(_ context.Context, in entity.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[in.ID] = in
	return nil
}

func (m *memDB) UpdateAddress(_ context.Context, in entity.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.addresses[in.ID]; !ok || a.UserID != in.UserID {
		return goerror.ErrNotFound
	}
	m.addresses[in.ID] = in
	return nil
}

func (m *memDB) DeleteAddress(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.addresses[id]; !ok || a.UserID != userID {
		return goerror.ErrNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *memDB) GetExtraMobilesByUserID(_ context.Context, userID int64) ([]entity.ExtraMobile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.ExtraMobile{}
	for _, em := range m.mobiles {
		if em.UserID == userID {
			out = append(out, em)
		}
	}
	return out, nil
}

func (m *memDB) GetExtraMobileByID(_ context.Context, id int64) (*entity.ExtraMobile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if em, ok := m.mobiles[id]; ok {
		cp := em
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) CreateExtraMobile(_ context.Context, in entity.ExtraMobile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mobiles[in.ID] = in
	return nil
}

func (m *memDB) ConfirmExtraMobile(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	em, ok := m.mobiles[id]
	if !ok {
		return goerror.ErrNotFound
	}
	em.Confirmed = true
	m.mobiles[id] = em
	return nil
}

func (m *memDB) DeleteExtraMobile(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if em, ok := m.mobiles[id]; !ok || em.UserID != userID {
		return goerror.ErrNotFound
	}
	delete(m.mobiles, id)
	return nil
}

// notifyCall records one gateway Send invocation.
type notifyCall struct {
	Message      string
	Subject      string
	Destinations []string
	Fallback     []string
}

type fakeNotify struct {
	mu    sync.Mutex
	calls []notifyCall

	// failFor marks destinations whose delivery should be reported failed.
	failFor map[string]bool
	// err is returned as a transport error when set.
	err error
}

func (f *fakeNotify) Send(_ context.Context, message, subject string, destinations, fallback []string) (entity.DeliveryReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{
		Message:      message,
		Subject:      subject,
		Destinations: destinations,
		Fallback:     fallback,
	})
	if f.err != nil {
		return entity.DeliveryReport{}, f.err
	}
	for _, d := range destinations {
		if f.failFor[d] {
			return entity.DeliveryReport{Message: "delivery failed"}, nil
		}
	}
	return entity.DeliveryReport{Success: true, Message: "code sent"}, nil
}

func (f *fakeNotify) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMessaging struct {
	mu         sync.Mutex
	loggedIn   []UserLoggedInEvent
	registered []UserRegisteredEvent
}

func (f *fakeMessaging) PublishUserLoggedIn(_ context.Context, msg UserLoggedInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = append(f.loggedIn, msg)
	return nil
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, msg)
	return nil
}

// memLocker serializes per key with in-process mutexes.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[string]*sync.Mutex{}}
}

func (l *memLocker) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	km, ok := l.locks[key]
	if !ok {
		km = &sync.Mutex{}
		l.locks[key] = km
	}
	l.mu.Unlock()

	km.Lock()
	defer km.Unlock()
	return fn(ctx)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type testEnv struct {
	uc        *Usecase
	db        *memDB
	notify    *fakeNotify
	messaging *fakeMessaging
	clock     *fakeClock
	goroutine *goroutine.Manager
	bcrypt    hash.Hash
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	clk := &fakeClock{now: time.Now().Truncate(time.Second)}
	secret := strings.Repeat("s", 64)
	tokener, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(secret),
		Issuer:     "authd-test",
		Audiences:  []string{"authd-clients"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Clock:      clk,
		UUID:       uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	db := newMemDB()
	notify := &fakeNotify{failFor: map[string]bool{}}
	msg := &fakeMessaging{}
	gm := goroutine.NewManager(16)
	bcrypt := hash.NewBcrypt(4, "")

	uc := New(Dependency{
		RepoDB:        db,
		RepoNotify:    notify,
		RepoMessaging: msg,
		Validator:     v10,
		Config:        cfg,
		Locker:        newMemLocker(),
		HMAC:          hash.NewHMACSHA256("test-hmac"),
		Bcrypt:        bcrypt,
		UID:           &seqID{},
		UUID:          uid.NewUUID(),
		Clock:         clk,
		JWT:           tokener,
		Instrument:    instrument.NewNoop(),
		Goroutine:     gm,
	})

	return &testEnv{
		uc:        uc,
		db:        db,
		notify:    notify,
		messaging: msg,
		clock:     clk,
		goroutine: gm,
		bcrypt:    bcrypt,
	}
}

func (e *testEnv) seedUser(t *testing.T, u entity.User) *entity.User {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	cp := u
	e.db.users[u.ID] = &cp
	return &cp
}

func (e *testEnv) otpCode(t *testing.T, destination string) string {
	t.Helper()
	rec, err := e.db.GetOTP(context.Background(), destination)
	if err != nil {
		t.Fatalf("no passcode record for %s: %v", destination, err)
	}
	return rec.Code
}

func isBusinessError(err error, msg string) bool {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return strings.Contains(gerr.Msg(), msg)
}
