package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/rims/internal/model"
	"github.com/iliyamo/rims/internal/utils"
)

type fakeUsers struct {
	byEmail map[string]model.User
	nextID  uint64
	failGet error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]model.User{}, nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, u model.User, password string, cost int) (uint64, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return 0, errors.New("duplicate")
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	u.ID = f.nextID
	u.PasswordHash = hash
	f.nextID++
	f.byEmail[u.Email] = u
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	if f.failGet != nil {
		return model.User{}, f.failGet
	}
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func newService(users *fakeUsers) *Service {
	return NewService(users, Config{JWTSecret: "secret", AccessTTLMin: 5, BcryptCost: bcrypt.MinCost}, nil)
}

func TestRegisterValidation(t *testing.T) {
	s := newService(newFakeUsers())
	cases := []struct {
		name string
		in   Registration
		err  error
	}{
		{"missing name", Registration{Email: "a@b.com", Password: "x", Phone: "9876543210"}, ErrMissingField},
		{"bad email", Registration{Name: "A", Email: "a@b", Password: "x", Phone: "9876543210"}, ErrInvalidEmail},
		{"short phone", Registration{Name: "A", Email: "a@b.com", Password: "x", Phone: "12345"}, ErrInvalidPhone},
		{"bad role", Registration{Name: "A", Email: "a@b.com", Password: "x", Role: "admin"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestRegisterDefaultsToTenantAndNormalizesEmail(t *testing.T) {
	users := newFakeUsers()
	s := newService(users)
	u, err := s.Register(context.Background(), Registration{
		Name: " Asha ", Email: " Asha@Example.COM ", Password: "pw", Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenant, u.Role)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "Asha", u.Name)

	owner, err := s.Register(context.Background(), Registration{
		Name: "Owner", Email: "owner@example.com", Password: "pw", Role: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, owner.Role)
}

func TestLoginAndVerify(t *testing.T) {
	users := newFakeUsers()
	s := newService(users)
	ctx := context.Background()
	a, err := s.Register(ctx, Registration{Name: "A", Email: "a@example.com", Password: "pw-a", Phone: "9876543210"})
	require.NoError(t, err)
	_, err = s.Register(ctx, Registration{Name: "B", Email: "b@example.com", Password: "pw-b", Phone: "9876543211"})
	require.NoError(t, err)

	u, tok, err := s.Login(ctx, "a@example.com", "pw-a")
	require.NoError(t, err)
	assert.Equal(t, a.ID, u.ID)
	claims, err := utils.ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenant, claims.Role)

	_, _, err = s.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	ok, err := s.Verify(ctx, a.ID, "a@example.com", "pw-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(ctx, a.ID, "b@example.com", "pw-b")
	require.NoError(t, err)
	assert.False(t, ok, "credentials of another user")

	ok, err = s.Verify(ctx, a.ID, "", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyReportsLookupFailure(t *testing.T) {
	users := newFakeUsers()
	users.failGet = errors.New("connection refused")
	s := newService(users)
	ok, err := s.Verify(context.Background(), 1, "a@example.com", "pw")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	users := newFakeUsers()
	s := newService(users)
	u, err := s.Register(context.Background(), Registration{Name: "Olga", Email: "olga@example.com", Password: "pw", Role: "owner"})
	require.NoError(t, err)

	got, err := s.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "olga@example.com", got.Email)
	assert.Equal(t, model.RoleOwner, got.Role)

	_, err = s.Profile(context.Background(), 99)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
