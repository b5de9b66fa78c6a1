package users

import (
	"context"
	"errors"
	"fmt"

	"rolesapi/internal/domain/roles"
	"rolesapi/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, roleID int64) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// EmailTaken reports whether a user other than excludeID uses email.
	// Pass 0 to check against every user.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

const selectWithRole = `
        SELECT u.id, u.email, u.phone_number, u.role_id,
               r.id, r.name, r.description
        FROM users u
        JOIN roles r ON r.id = u.role_id
    `

func scanUser(row pgx.Row) (*User, error) {
	u := User{Role: &roles.Role{}}
	err := row.Scan(
		&u.ID, &u.Email, &u.PhoneNumber, &u.RoleID,
		&u.Role.ID, &u.Role.Name, &u.Role.Description,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	return r.query(ctx, selectWithRole+` ORDER BY u.id`)
}

func (r *Repository) ListByRole(ctx context.Context, roleID int64) ([]User, error) {
	return r.query(ctx, selectWithRole+` WHERE u.role_id = $1 ORDER BY u.id`, roleID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, selectWithRole+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

// writeError maps constraint violations raised by an insert or update.
func writeError(op string, err error) error {
	switch {
	case dbx.IsViolation(err, dbx.UniqueViolation):
		return ErrDuplicateEmail
	case dbx.IsViolation(err, dbx.ForeignKeyViolation):
		return ErrUnknownRole
	default:
		return fmt.Errorf("%s user: %w", op, err)
	}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        INSERT INTO users (email, phone_number, role_id)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, user.Email, user.PhoneNumber, user.RoleID).Scan(&user.ID)
	if err != nil {
		return writeError("insert", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx,
		`UPDATE users SET email = $1, phone_number = $2, role_id = $3 WHERE id = $4`,
		user.Email, user.PhoneNumber, user.RoleID, user.ID)
	if err != nil {
		return writeError("update", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
