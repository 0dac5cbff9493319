package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink2deck/internal/model"
	"ink2deck/internal/pkg/jwtutil"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []model.User
	err   error
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	user.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *user)
	return nil
}

func (m *memoryUsers) find(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == username })
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == email })
}

func (m *memoryUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.ID == id })
}

const testSecret = "secret"

func newAuth(users UserStore) *AuthService {
	return NewAuthService(users, testSecret, time.Hour)
}

func alice() RegisterInput {
	return RegisterInput{
		Name:        "Alice Liddell",
		Email:       "alice@example.com",
		Username:    "alice",
		Password:    "wonderland",
		AcceptTerms: true,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	users := &memoryUsers{}
	svc := newAuth(users)
	ctx := context.Background()

	reg, err := svc.Register(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, uint(1), reg.User.ID)
	assert.NotEqual(t, "wonderland", users.users[0].PasswordHash)

	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)

	claims, err := jwtutil.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
}

func TestRegister_Rejections(t *testing.T) {
	cases := map[string]struct {
		mutate func(*RegisterInput)
		want   error
	}{
		"terms unchecked": {func(in *RegisterInput) { in.AcceptTerms = false }, ErrTermsNotAccepted},
		"terms before fields": {func(in *RegisterInput) {
			in.AcceptTerms = false
			in.Name = ""
		}, ErrTermsNotAccepted},
		"missing name":     {func(in *RegisterInput) { in.Name = " " }, ErrInvalidInput},
		"missing email":    {func(in *RegisterInput) { in.Email = "" }, ErrInvalidInput},
		"missing username": {func(in *RegisterInput) { in.Username = "" }, ErrInvalidInput},
		"missing password": {func(in *RegisterInput) { in.Password = "" }, ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			users := &memoryUsers{}
			in := alice()
			tc.mutate(&in)

			_, err := newAuth(users).Register(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, users.users)
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	users := &memoryUsers{}
	svc := newAuth(users)
	ctx := context.Background()
	_, err := svc.Register(ctx, alice())
	require.NoError(t, err)

	sameUsername := alice()
	sameUsername.Email = "other@example.com"
	_, err = svc.Register(ctx, sameUsername)
	assert.ErrorIs(t, err, ErrUsernameExists)

	sameEmail := alice()
	sameEmail.Username = "alice2"
	_, err = svc.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, ErrEmailExists)

	assert.Len(t, users.users, 1)
}

func TestLogin_Failures(t *testing.T) {
	svc := newAuth(&memoryUsers{})
	ctx := context.Background()
	_, err := svc.Register(ctx, alice())
	require.NoError(t, err)

	cases := map[string]LoginInput{
		"wrong password": {Username: "alice", Password: "WONDERLAND"},
		"unknown user":   {Username: "bob", Password: "wonderland"},
		"case differs":   {Username: "Alice", Password: "wonderland"},
		"empty":          {},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("dial tcp: connection refused")

	svc := NewUnavailableAuthService(cause, testSecret, time.Hour)
	assert.Equal(t, cause, svc.StoreError())

	_, err := svc.Login(ctx, LoginInput{Username: "a", Password: "b"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)

	_, err = svc.Register(ctx, alice())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	failing := newAuth(&memoryUsers{err: cause})
	_, err = failing.Login(ctx, LoginInput{Username: "a", Password: "b"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestGetUserByID(t *testing.T) {
	svc := newAuth(&memoryUsers{})
	ctx := context.Background()
	reg, err := svc.Register(ctx, alice())
	require.NoError(t, err)

	u, err := svc.GetUserByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", u.Name)

	_, err = svc.GetUserByID(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
