package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"galaxyco.ai/api-server/internal/model"
)

type userStore struct {
	q querier
}

const userColumns = `id, workos_user_id, email, first_name, last_name, avatar_url,
       preferences, last_login_at, is_active, created_at, updated_at`

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *userStore) GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE workos_user_id = $1`, workosID)
	return scanUser(row)
}

func (s *userStore) UpsertByWorkOSID(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, workos_user_id, email, first_name, last_name, avatar_url, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (workos_user_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url,
			last_login_at = NOW(),
			updated_at = NOW()
		RETURNING `+userColumns,
		user.ID, user.WorkOSID, user.Email, user.FirstName, user.LastName, user.AvatarURL,
	)
	stored, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (s *userStore) UpdateProfile(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, avatar_url = $4, preferences = COALESCE($5, preferences), updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.FirstName, user.LastName, user.AvatarURL, user.Preferences,
	)
	stored, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (s *userStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.WorkOSID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.AvatarURL,
		&u.Preferences,
		&u.LastLoginAt,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
