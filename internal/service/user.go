package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

// PasswordCost is the bcrypt work factor for stored digests.
const PasswordCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
)

type UserService struct {
	repo     repo.UserRepository
	secret   []byte
	tokenTTL time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(repo repo.UserRepository, secret []byte, tokenTTL time.Duration) *UserService {
	return &UserService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Register stores a new user. Uniqueness is enforced by the store, not by a lookup.
func (s *UserService) Register(ctx context.Context, c model.Credentials) (model.User, error) {
	username := strings.TrimSpace(c.Username)
	if username == "" || c.Password == "" {
		return model.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.User{}, fmt.Errorf("%w: password is too long", ErrValidation)
		}
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, model.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			return u, ErrUserExists
		}
		return u, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login returns a signed session token. Unknown users and wrong passwords
// produce the same ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, c model.Credentials) (string, error) {
	username := strings.TrimSpace(c.Username)
	if username == "" || c.Password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			// сравниваем с фиктивным хэшем, чтобы время ответа не выдавало отсутствие пользователя
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(c.Password))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, u.Username, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), PasswordCost)
	})
	return s.dummyHash
}
