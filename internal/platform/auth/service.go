package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleMahasiswa = "mahasiswa"
	RoleAdmin     = "admin"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInUse: presensi rows still reference the user
	ErrInUse = errors.New("user still referenced")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *User, error)
	Register(ctx context.Context, in RegisterRequest) (*User, error)
	CreateAccount(ctx context.Context, in CreateAccountRequest) (*User, error)
	Me(ctx context.Context, id uint64) (*User, error)
	Delete(ctx context.Context, id uint64) error
}

type Service struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(db *sql.DB, secret []byte, ttl time.Duration) *Service {
	return NewServiceWithStore(NewStore(db), secret, ttl)
}

func NewServiceWithStore(store UserStore, secret []byte, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

// NewToken signs an HS256 token carrying sub (user id), role and nama.
func NewToken(secret []byte, ttl time.Duration, u *User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(u.ID, 10),
		"role": u.Role,
		"nama": u.Nama,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenString, err := NewToken(s.secret, s.ttl, u)
	if err != nil {
		return "", nil, err
	}
	return tokenString, u, nil
}

// Register is public self-registration; the account is always a mahasiswa.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	return s.create(ctx, in.Nama, in.Email, in.Password, RoleMahasiswa)
}

// CreateAccount is the admin-only path that may assign any role.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountRequest) (*User, error) {
	return s.create(ctx, in.Nama, in.Email, in.Password, in.Role)
}

// EnsureAdmin creates the bootstrap admin when no account uses email yet.
// An existing account is left untouched, whatever its role.
func (s *Service) EnsureAdmin(ctx context.Context, nama, email, password string) (*User, bool, error) {
	u, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, false, err
	}
	if u != nil {
		return u, false, nil
	}
	u, err = s.create(ctx, nama, email, password, RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *Service) create(ctx context.Context, nama, email, password, role string) (*User, error) {
	email = normalizeEmail(email)
	exists, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Nama:         strings.TrimSpace(nama),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Me(ctx context.Context, id uint64) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
