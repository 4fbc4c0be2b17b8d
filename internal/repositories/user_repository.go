package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint
// (email or dob_id on users, name on departments).
var ErrDuplicate = errors.New("duplicate value")

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id int64) error
	List(filter models.UserFilter, scope authz.Scope) ([]*models.User, error)
	UpdatePassword(id int64, passwordHash string) error
	SetActive(id int64, active bool) error

	// refresh helpers
	UpdateRefresh(userID int64, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int64) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, full_name, email, password_hash, role, department_id, dob_id,
	is_active, is_staff, is_superuser,
	telegram_chat_id, notify_telegram,
	refresh_token, refresh_expires_at, refresh_revoked, created_at`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			full_name, email, password_hash, role, department_id, dob_id,
			is_active, is_staff, is_superuser,
			telegram_chat_id, notify_telegram,
			refresh_token, refresh_expires_at, refresh_revoked
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULL,NULL,FALSE)
		RETURNING id, created_at`
	err := r.DB.QueryRow(q,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.DepartmentID,
		user.DobID,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.TelegramChatID,
		user.NotifyTelegram,
	).Scan(&user.ID, &user.CreatedAt)
	return wrapDuplicate(err)
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		deptID   sql.NullInt64
		tgChatID sql.NullInt64
		rt       sql.NullString
		rte      sql.NullTime
		rr       sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &deptID, &u.DobID,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&tgChatID, &u.NotifyTelegram,
		&rt, &rte, &rr, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deptID.Valid {
		d := deptID.Int64
		u.DepartmentID = &d
	}
	if tgChatID.Valid {
		c := tgChatID.Int64
		u.TelegramChatID = &c
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.DB.QueryRow(q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users SET
			full_name=$1, email=$2, role=$3, department_id=$4, dob_id=$5,
			is_active=$6, is_staff=$7, is_superuser=$8,
			telegram_chat_id=$9, notify_telegram=$10
		WHERE id=$11`
	_, err := r.DB.Exec(q,
		user.FullName, user.Email, user.Role, user.DepartmentID, user.DobID,
		user.IsActive, user.IsStaff, user.IsSuperuser,
		user.TelegramChatID, user.NotifyTelegram,
		user.ID,
	)
	return wrapDuplicate(err)
}

func (r *userRepository) Delete(id int64) error {
	// tasks assigned to this user go with it (ON DELETE CASCADE);
	// tasks it assigned keep a NULL assigner (ON DELETE SET NULL).
	_, err := r.DB.Exec(`DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *userRepository) List(filter models.UserFilter, scope authz.Scope) ([]*models.User, error) {
	if scope.Kind == authz.ScopeNone {
		return nil, nil
	}

	q := `SELECT` + userColumns + ` FROM users`
	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if scope.Kind == authz.ScopeDepartment {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", argID))
		args = append(args, scope.DepartmentID)
		argID++
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argID))
		args = append(args, *filter.Role)
		argID++
	}
	if filter.DepartmentID != nil {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", argID))
		args = append(args, *filter.DepartmentID)
		argID++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argID))
		args = append(args, *filter.IsActive)
		argID++
	}

	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY full_name ASC"

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdatePassword(id int64, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
	return err
}

func (r *userRepository) SetActive(id int64, active bool) error {
	_, err := r.DB.Exec(`UPDATE users SET is_active=$1 WHERE id=$2`, active, id)
	return err
}

func (r *userRepository) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3`
	_, err := r.DB.Exec(q, token, expiresAt, userID)
	return err
}

func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING id`
	var id int64
	err := r.DB.QueryRow(q, newToken, newExpiresAt, oldToken).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *userRepository) ClearRefresh(userID int64) error {
	const q = `
		UPDATE users SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE
		WHERE id=$1`
	_, err := r.DB.Exec(q, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE refresh_token = $1`
	u, err := scanUser(r.DB.QueryRow(q, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// wrapDuplicate maps a pq unique_violation onto ErrDuplicate so services can
// surface it as a validation message instead of a 500.
func wrapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}
