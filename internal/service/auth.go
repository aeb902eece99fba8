package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/userhub/userhub-go/internal/crypto"
	"github.com/userhub/userhub-go/internal/model"
	"github.com/userhub/userhub-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidToken       = crypto.ErrInvalidToken
)

// dummyHash is compared against when the email is unknown so that a miss
// costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := crypto.HashPassword("userhub-dummy-password")
	return hash
})

// AuthService handles credential validation and bearer tokens.
type AuthService struct {
	store  UserStore
	tokens *crypto.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
	}
}

// ValidateCredentials checks an email and password pair against the stored
// hash. An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (model.Identity, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return model.Identity{}, err
	}
	return user.Identity(), nil
}

func (s *AuthService) checkCredentials(ctx context.Context, email, password string) (*model.User, error) {
	if !validEmail(email) {
		return nil, ErrInvalidEmailFormat
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if user == nil {
		crypto.VerifyPassword(password, dummyHash())
		return nil, ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login validates credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	user, err := s.checkCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return model.LoginResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issuing token: %w", err)
	}

	return model.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user.Public(),
	}, nil
}

// Authenticate verifies a bearer token and reloads its subject, so the
// returned identity reflects the user's current name, email and role.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Identity{}, ErrInvalidToken
		}
		return model.Identity{}, fmt.Errorf("loading token subject: %w", err)
	}

	return user.Identity(), nil
}
