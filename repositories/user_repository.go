package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/matchsquad/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	// GetByIDForUpdate блокирует строку пользователя до конца транзакции exec.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update перезаписывает name, image и role. exec может быть транзакцией или nil.
	Update(ctx context.Context, exec SQLExecutor, user *models.User) error
	MarkEmailVerified(ctx context.Context, id int, at time.Time) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	CountByRole(ctx context.Context) (map[models.UserRole]int, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, email, name, image, role, email_verified_at, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, image, role, email_verified_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.Image,
		nullableRole(user.Role),
		user.EmailVerifiedAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == pqUniqueViolation && constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(pickExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) Update(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		UPDATE users SET
			name = $1,
			image = $2,
			role = $3
		WHERE id = $4`

	result, err := pickExecutor(r.db, exec).ExecContext(ctx, query,
		user.Name,
		user.Image,
		nullableRole(user.Role),
		user.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) MarkEmailVerified(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE users SET email_verified_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		if *filter.Role == models.RoleJugador {
			// пользователи без роли считаются игроками
			conditions = append(conditions, fmt.Sprintf("(role = $%d OR role IS NULL)", len(args)))
		} else {
			conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
		}
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(COALESCE(name, '')) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) CountByRole(ctx context.Context) (map[models.UserRole]int, error) {
	query := `SELECT COALESCE(role, 'jugador'), COUNT(*) FROM users GROUP BY COALESCE(role, 'jugador')`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.UserRole]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[models.UserRole(role)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var role sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&role,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if role.Valid {
		user.Role = models.UserRole(role.String)
	}
	return &user, nil
}

func nullableRole(role models.UserRole) sql.NullString {
	return sql.NullString{String: string(role), Valid: role != ""}
}
