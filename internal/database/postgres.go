package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/umar/usergroups/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrMissingReference = errors.New("referenced record does not exist")
)

const (
	ConstraintUserEmail    = "users_email_unique"
	ConstraintUserUsername = "users_username_unique"
)

// DuplicateError reports which unique constraint an insert or update hit.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record: %s", e.Constraint)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func InitDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &DuplicateError{Constraint: pqErr.Constraint}
		case "23503":
			return ErrMissingReference
		case "22P02":
			// malformed uuid; no row can match it
			return ErrNotFound
		}
	}
	return err
}

// --- Users ---

const userColumns = `id, email, username, password, avatar_url, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts u and fills in its generated id and timestamps.
// u.Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, username, password, avatar_url) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Username, u.Password, u.Avatar,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username", username)
}

// UpdateUser writes the mutable fields of u (email, password, avatar) and
// refreshes u.UpdatedAt.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx,
		`UPDATE users SET email = $1, password = $2, avatar_url = $3, updated_at = NOW()
		 WHERE id = $4 RETURNING updated_at`,
		u.Email, u.Password, u.Avatar, u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err))
	}
	return nil
}

// --- Groups ---

const groupColumns = `id, name, description, chronic, schedule, location, master, created_at, updated_at`

func scanGroup(row interface{ Scan(...interface{}) error }) (*models.Group, error) {
	var g models.Group
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Chronic, &g.Schedule,
		&g.Location, &g.Master, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO groups (name, description, chronic, schedule, location, master)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		g.Name, g.Description, g.Chronic, g.Schedule, g.Location, g.Master,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", translate(err))
	}
	return nil
}

func (s *Store) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	g, err := scanGroup(s.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", translate(err))
	}
	return g, nil
}

// ListGroups returns up to limit groups, newest first.
func (s *Store) ListGroups(ctx context.Context, limit int) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}
