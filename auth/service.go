// Package auth implements the user account lifecycle: registration, login,
// bearer token resolution, profile updates, soft deletion and password change.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/logger"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/krishkalaria12/pic-profile-maker/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized covers every credential or token failure. Callers never
// learn which part was wrong.
var ErrUnauthorized = errors.New("could not validate credentials")

// UserStore is the persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields repository.ProfileFields) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	City     *string
	Country  *string
}

// ProfileUpdate carries the optional fields of a profile update. Nil fields
// are left as they are.
type ProfileUpdate struct {
	Name    *string
	City    *string
	Country *string
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

type Service struct {
	users    UserStore
	tokens   *TokenManager
	logger   *logger.Logger
	hashCost int
}

func NewService(users UserStore, tokens *TokenManager, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		logger:   log,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an active "free" account. A taken email returns
// repository.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	if err := validateLength("name", in.Name, minTextLen, maxTextLen); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", in.Password); err != nil {
		return nil, err
	}
	if err := validateOptional("city", in.City); err != nil {
		return nil, err
	}
	if err := validateOptional("country", in.Country); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     in.Name,
		Email:    email,
		City:     in.City,
		Country:  in.Country,
		IsActive: true,
		InitDate: time.Now().UTC(),
		UserType: models.UserTypeFree,
		PassHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.logger.Info("Auth service: email already registered", "email", email)
		}
		return nil, err
	}

	s.logger.Info("Auth service: user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks the credentials and issues a bearer token. Disabled
// accounts are rejected like a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !checkPasswordHash(password, user.PassHash) || !user.IsActive {
		s.logger.Debug("Auth service: login rejected", "user_id", user.ID, "active", user.IsActive)
		return nil, ErrUnauthorized
	}

	tokenStr, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: tokenStr,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.Duration().Seconds()),
	}, nil
}

// CurrentUser resolves a bearer token to an active user.
func (s *Service) CurrentUser(ctx context.Context, tokenStr string) (*models.User, error) {
	if tokenStr == "" {
		return nil, ErrUnauthorized
	}

	id, err := s.tokens.Parse(tokenStr)
	if err != nil {
		s.logger.Debug("Auth service: token rejected", "error", err)
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// UpdateProfile changes name, city and country. Email and tier have no path
// through here.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, upd ProfileUpdate) (*models.User, error) {
	fields := repository.ProfileFields{
		Name:    user.Name,
		City:    user.City,
		Country: user.Country,
	}

	if upd.Name != nil {
		if err := validateLength("name", *upd.Name, minTextLen, maxTextLen); err != nil {
			return nil, err
		}
		fields.Name = *upd.Name
	}
	if upd.City != nil {
		if err := validateOptional("city", upd.City); err != nil {
			return nil, err
		}
		fields.City = upd.City
	}
	if upd.Country != nil {
		if err := validateOptional("country", upd.Country); err != nil {
			return nil, err
		}
		fields.Country = upd.Country
	}

	if err := s.users.UpdateProfile(ctx, user.ID, fields); err != nil {
		return nil, err
	}

	return s.users.FindByID(ctx, user.ID)
}

// Disable soft-deletes the account. Nothing is removed.
func (s *Service) Disable(ctx context.Context, user *models.User) error {
	if err := s.users.SetActive(ctx, user.ID, false); err != nil {
		return err
	}
	user.IsActive = false

	s.logger.Info("Auth service: user disabled", "user_id", user.ID)
	return nil
}

// ChangePassword replaces the hash after proving knowledge of the current password.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if !checkPasswordHash(current, user.PassHash) {
		return ErrUnauthorized
	}
	if err := validatePassword("new_password", next); err != nil {
		return err
	}

	hash, err := hashPassword(next, s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PassHash = hash

	s.logger.Info("Auth service: password changed", "user_id", user.ID)
	return nil
}
