package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core/user"
)

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Formation    string    `db:"formation"`
	AvatarURL    string    `db:"avatar_url"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Formation:    r.Formation,
		AvatarURL:    r.AvatarURL,
		Role:         r.Role,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = ? AND id NOT IN (?))`, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		query = repo.db.Rebind(q)
		args = inArgs
	} else {
		query += ")"
	}

	var exists bool
	if err := repo.db.Get(&exists, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO "user" (id, name, email, formation, avatar_url, role, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID, usr.Name, usr.Email, usr.Formation, usr.AvatarURL, usr.Role, usr.IsActive, usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(id string) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by ID")
	}
	return row.toDomain(), nil
}

func (repo userRepository) GetUserByEmail(email string) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return row.toDomain(), nil
}

func (repo userRepository) QueryUsersByRole(role string) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT * FROM "user" WHERE role = $1 AND is_active`, role); err != nil {
		return nil, errors.Wrap(err, "querying users by role")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// UpdateUser only saves set fields; IsActive is updated when non-nil.
func (repo userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	res, err := repo.db.Exec(
		`UPDATE "user" SET
			name          = COALESCE(NULLIF($2, ''), name),
			formation     = COALESCE(NULLIF($3, ''), formation),
			avatar_url    = COALESCE(NULLIF($4, ''), avatar_url),
			role          = COALESCE(NULLIF($5, ''), role),
			password_hash = COALESCE($6, password_hash),
			is_active     = COALESCE($7, is_active),
			last_login    = COALESCE($8, last_login),
			updated_at    = COALESCE($9, updated_at)
		 WHERE id = $1`,
		usr.ID, usr.Name, usr.Formation, usr.AvatarURL, usr.Role, usr.PasswordHash, isActive,
		null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()), null.NewTime(usr.UpdatedAt, !usr.UpdatedAt.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(usr.ID)
}
