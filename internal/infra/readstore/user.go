package readstore

import (
	"context"
	"time"

	"mobirent/internal/domain/user"
	"mobirent/internal/infra/repository"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db repository.DBTX
}

func NewUserReadStore(db repository.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

const userQuery = `SELECT id, email, username, password_hash, role, created_at FROM users`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.findOne(ctx, userQuery+` WHERE id = $1`, id)
}

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, userQuery+` WHERE email = $1`, email)
}

func (s *UserReadStore) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var (
		id            uuid.UUID
		emailRaw      string
		username      string
		passwordHash  string
		role          string
		createdAt     time.Time
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(&id, &emailRaw, &username, &passwordHash, &role, &createdAt)
	if err != nil {
		return nil, wrapReadErr("failed to find user", err)
	}

	email, err := user.NewEmail(emailRaw)
	if err != nil {
		return nil, wrapReadErr("stored email rejected by domain validation", err)
	}
	domainRole, err := user.NewRole(role)
	if err != nil {
		return nil, wrapReadErr("stored role rejected by domain validation", err)
	}

	return user.ReconstructUser(id, email, username, passwordHash, domainRole, createdAt), nil
}
