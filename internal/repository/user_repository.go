package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

const userColumns = `id, name, email, password_hash, role, manager_id, mobile_number, company_email,
        personal_email, department, job_description, profile_image, is_verified,
        email_verification_token, email_verification_expires, reset_password_token,
        reset_password_expires, last_login_at, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, manager_id, mobile_number, company_email,
            personal_email, department, job_description, profile_image, is_verified,
            email_verification_token, email_verification_expires)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ManagerID,
		user.MobileNumber,
		user.CompanyEmail,
		user.PersonalEmail,
		user.Department,
		user.JobDescription,
		user.ProfileImage,
		user.IsVerified,
		user.EmailVerificationToken,
		user.EmailVerificationExpires,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapPgError(err)
}

// Update writes profile, role and hierarchy fields. Token pairs and the
// password hash have dedicated methods.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, role=$3, manager_id=$4, mobile_number=$5, company_email=$6,
            personal_email=$7, department=$8, job_description=$9, profile_image=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.ManagerID,
		user.MobileNumber,
		user.CompanyEmail,
		user.PersonalEmail,
		user.Department,
		user.JobDescription,
		user.ProfileImage,
		user.ID,
	).Scan(&user.UpdatedAt)
	return mapPgError(err)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, domain.NormalizeEmail(email))
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		clauses = append(clauses, fmt.Sprintf("manager_id=$%d", len(args)))
	}
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))
	return r.fetchMany(ctx, query, args...)
}

func (r *userRepository) ListByManager(ctx context.Context, managerID string) ([]domain.User, error) {
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users WHERE manager_id=$1 ORDER BY created_at`, managerID)
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id, hash string, expires time.Time) error {
	const query = `
        UPDATE users SET email_verification_token=$1, email_verification_expires=$2, updated_at=NOW()
        WHERE id=$3`
	return r.execOne(ctx, query, hash, expires, id)
}

func (r *userRepository) ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	query := `
        UPDATE users SET is_verified=TRUE, email_verification_token=NULL,
            email_verification_expires=NULL, updated_at=NOW()
        WHERE email_verification_token=$1 AND email_verification_expires > $2
        RETURNING ` + userColumns
	return r.fetchSingle(ctx, query, hash, now)
}

func (r *userRepository) SetResetToken(ctx context.Context, id, hash string, expires time.Time) error {
	const query = `
        UPDATE users SET reset_password_token=$1, reset_password_expires=$2, updated_at=NOW()
        WHERE id=$3`
	return r.execOne(ctx, query, hash, expires, id)
}

func (r *userRepository) FindByResetToken(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
        WHERE reset_password_token=$1 AND reset_password_expires > $2`
	return r.fetchSingle(ctx, query, hash, now)
}

func (r *userRepository) ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*domain.User, error) {
	query := `
        UPDATE users SET password_hash=$3, reset_password_token=NULL,
            reset_password_expires=NULL, updated_at=NOW()
        WHERE reset_password_token=$1 AND reset_password_expires > $2
        RETURNING ` + userColumns
	return r.fetchSingle(ctx, query, hash, now, passwordHash)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login_at=$1 WHERE id=$2`, at, id)
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (r *userRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		users = append(users, *user)
	}
	return users, mapPgError(rows.Err())
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.ManagerID,
		&user.MobileNumber,
		&user.CompanyEmail,
		&user.PersonalEmail,
		&user.Department,
		&user.JobDescription,
		&user.ProfileImage,
		&user.IsVerified,
		&user.EmailVerificationToken,
		&user.EmailVerificationExpires,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
