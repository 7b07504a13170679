package db

import (
	"context"

	"github.com/restapp/backend/internal/model"
)

const userColumns = `id, email, first_name, last_name, hashed_password, is_confirmed, avatar, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.HashedPassword,
		&user.IsConfirmed,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	query := `
		INSERT INTO users (email, first_name, last_name, hashed_password, is_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, user.Email, user.FirstName, user.LastName, user.HashedPassword))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

// ConfirmUser flips is_confirmed once. It reports false when the user was
// already confirmed (or does not exist), so concurrent confirmations are no-ops.
func (db *Postgres) ConfirmUser(ctx context.Context, userID int64) (bool, error) {
	query := `
		UPDATE users
		SET is_confirmed = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_confirmed = FALSE
	`
	tag, err := db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (db *Postgres) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (*model.User, error) {
	query := `
		UPDATE users
		SET avatar = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, userID, avatarURL))
}
