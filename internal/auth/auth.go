// Package auth registers users, logs them in and verifies credentials
// for payments.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/model"
	"github.com/iliyamo/rims/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidPhone       = errors.New("phone must be exactly 10 digits")
	ErrInvalidRole        = errors.New("role must be OWNER or TENANT")
	ErrMissingField       = errors.New("name, email and password are required")
)

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)
	phoneRe = regexp.MustCompile(`^\d{10}$`)
)

// Users is the subset of the user repository auth needs.
type Users interface {
	Create(ctx context.Context, u model.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Config holds token and hashing settings.
type Config struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// Service implements registration, login and payment verification.
type Service struct {
	users Users
	cfg   Config
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewService(users Users, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Service{users: users, cfg: cfg, now: time.Now, log: log}
}

// Registration is the input of Register.
type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// Register validates r and creates the user. Tenants must give a phone
// number; owners may leave it empty. A taken email surfaces from the
// store's unique key.
func (s *Service) Register(ctx context.Context, r Registration) (model.User, error) {
	u := model.User{
		Name:  strings.TrimSpace(r.Name),
		Email: strings.ToLower(strings.TrimSpace(r.Email)),
		Phone: strings.TrimSpace(r.Phone),
		Role:  strings.ToUpper(strings.TrimSpace(r.Role)),
	}
	if u.Role == "" {
		u.Role = model.RoleTenant
	}
	if u.Name == "" || u.Email == "" || r.Password == "" {
		return model.User{}, ErrMissingField
	}
	if u.Role != model.RoleOwner && u.Role != model.RoleTenant {
		return model.User{}, ErrInvalidRole
	}
	if !emailRe.MatchString(u.Email) {
		return model.User{}, ErrInvalidEmail
	}
	if (u.Role == model.RoleTenant || u.Phone != "") && !phoneRe.MatchString(u.Phone) {
		return model.User{}, ErrInvalidPhone
	}
	id, err := s.users.Create(ctx, u, r.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	s.log.WithFields(logrus.Fields{"user_id": id, "role": u.Role}).Info("user registered")
	return u, nil
}

// Login checks the password and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, utils.AccessToken, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin, s.now())
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	return u, tok, nil
}

// Profile returns the user behind a token. A user that no longer exists
// yields ErrInvalidCredentials.
func (s *Service) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Verify re-checks credentials entered at payment time. It is true only
// when email and password belong to userID itself, so one tenant cannot
// settle another's payment.
func (s *Service) Verify(ctx context.Context, userID uint64, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.ID == userID && utils.VerifyPassword(u.PasswordHash, password), nil
}
