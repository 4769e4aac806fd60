// Package users holds the account rules: unique email and username, bcrypt
// password storage and credential checks.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/umar/usergroups/internal/database"
	"github.com/umar/usergroups/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type CreateInput struct {
	Email    string
	Username string
	Password string
	Avatar   string
}

type UpdateInput struct {
	Email    string
	Password string
	Avatar   string
}

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// exists reports whether lookup found a row. Only ErrNotFound counts as absent.
func exists(u *models.User, err error) (*models.User, bool, error) {
	if err == nil {
		return u, true, nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	return nil, false, err
}

// duplicate maps a unique-constraint violation onto the matching service
// error. It covers the window between the lookup and the write.
func duplicate(err error) error {
	var dup *database.DuplicateError
	if !errors.As(err, &dup) {
		return err
	}
	if dup.Constraint == database.ConstraintUserUsername {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

func (s *Service) hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	if _, found, err := exists(s.repo.GetUserByEmail(ctx, in.Email)); err != nil {
		return nil, err
	} else if found {
		return nil, ErrEmailTaken
	}
	if _, found, err := exists(s.repo.GetUserByUsername(ctx, in.Username)); err != nil {
		return nil, err
	} else if found {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:    in.Email,
		Username: in.Username,
		Password: hash,
		Avatar:   in.Avatar,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, duplicate(err)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, found, err := exists(s.repo.GetUserByID(ctx, id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return u, nil
}

// Update replaces email, password and avatar of user id. The password is
// always re-hashed.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != u.Email {
		other, found, err := exists(s.repo.GetUserByEmail(ctx, in.Email))
		if err != nil {
			return nil, err
		}
		if found && other.ID != u.ID {
			return nil, ErrEmailTaken
		}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u.Email = in.Email
	u.Password = hash
	u.Avatar = in.Avatar

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, duplicate(err)
	}
	return u, nil
}

// Authenticate returns the user owning email when password matches its hash.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, found, err := exists(s.repo.GetUserByEmail(ctx, email))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
