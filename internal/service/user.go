package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/userhub/userhub-go/internal/crypto"
	"github.com/userhub/userhub-go/internal/model"
	"github.com/userhub/userhub-go/internal/repository"
)

var (
	ErrEmailTaken   = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore is the persistence contract the services depend on.
// *repository.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.PublicUser, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

// UserService handles user account business logic.
type UserService struct {
	store UserStore
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// Create registers a new user. The role defaults to "user".
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.PublicUser, error) {
	if err := validateStruct(req); err != nil {
		return model.PublicUser{}, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user, err := s.create(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) create(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	// Two concurrent creates can both pass the lookup above; the unique
	// index on email rejects the second insert.
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := s.getByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// Update applies the non-nil fields of req to the user. A new password is
// hashed before it is stored.
func (s *UserService) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (model.PublicUser, error) {
	if err := validateStruct(req); err != nil {
		return model.PublicUser{}, err
	}

	user, err := s.getByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		owner, err := s.store.FindByEmail(ctx, *req.Email)
		if err != nil {
			return model.PublicUser{}, fmt.Errorf("looking up email: %w", err)
		}
		if owner != nil && owner.ID != user.ID {
			return model.PublicUser{}, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return model.PublicUser{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.store.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return model.PublicUser{}, ErrEmailTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return model.PublicUser{}, ErrUserNotFound
		default:
			return model.PublicUser{}, fmt.Errorf("updating user: %w", err)
		}
	}

	return user.Public(), nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// EnsureAdmin creates an admin account with the given credentials unless a
// user with that email already exists. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.create(ctx, name, email, password, model.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) getByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}
