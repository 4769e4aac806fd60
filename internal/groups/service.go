package groups

import (
	"context"
	"errors"

	"github.com/umar/usergroups/internal/database"
	"github.com/umar/usergroups/internal/models"
)

var (
	ErrNotFound       = errors.New("group not found")
	ErrMasterNotFound = errors.New("master user not found")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type Repository interface {
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context, limit int) ([]models.Group, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type CreateInput struct {
	Name        string
	Description string
	Chronic     string
	Schedule    string
	Location    string
	Master      string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Group, error) {
	if _, err := s.repo.GetUserByID(ctx, in.Master); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}

	g := &models.Group{
		Name:        in.Name,
		Description: in.Description,
		Chronic:     in.Chronic,
		Schedule:    in.Schedule,
		Location:    in.Location,
		Master:      in.Master,
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		if errors.Is(err, database.ErrMissingReference) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Group, error) {
	g, err := s.repo.GetGroupByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	return g, err
}

// List returns the newest groups. limit is clamped to [1, MaxListLimit] and
// defaults to DefaultListLimit when zero or negative.
func (s *Service) List(ctx context.Context, limit int) ([]models.Group, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListGroups(ctx, limit)
}
