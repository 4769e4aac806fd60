package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/umar/usergroups/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext password of factory users unless merged.
const DefaultPassword = "secret123"

type UserCreator interface {
	CreateUser(ctx context.Context, u *models.User) error
}

// UserFactory persists users with unique defaults. Merge functions receive a
// user whose Password is still plaintext; it is hashed before insert.
type UserFactory struct {
	store UserCreator
}

func NewUserFactory(store UserCreator) *UserFactory {
	return &UserFactory{store: store}
}

func (f *UserFactory) Create(t testing.TB, merge ...func(*models.User)) *models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	u := &models.User{
		Email:    "user-" + suffix + "@example.com",
		Username: "user_" + suffix,
		Password: DefaultPassword,
		Avatar:   "https://images.example.com/" + suffix + ".png",
	}
	for _, fn := range merge {
		fn(u)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash factory password: %v", err)
	}
	u.Password = string(hash)

	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create factory user: %v", err)
	}
	return u
}
