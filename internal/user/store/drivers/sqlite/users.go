package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/edustack/coursegate/internal/user/store"
	"github.com/edustack/coursegate/pkg/identity"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, first_name, last_name, email, phone_number, password_hash, role, status, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u store.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PhoneNumber,
		u.PasswordHash, string(u.Role), u.Status, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByPhone(ctx context.Context, phone string) (store.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE phone_number = ?`, phone)
	return scanUser(row)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, email, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE email = ?`,
		newHash, time.Now().UTC(), email,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (store.User, error) {
	var u store.User
	var role string
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return store.User{}, mapNotFound(err)
	}
	u.Role = identity.Role(role)
	return u, nil
}
