package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core/adminreq"
)

type requestRow struct {
	ID             string      `db:"id"`
	UserID         string      `db:"user_id"`
	Email          string      `db:"email"`
	Status         string      `db:"status"`
	ValidationCode null.String `db:"validation_code"`
	CodeExpiresAt  null.Time   `db:"code_expires_at"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r requestRow) toDomain() adminreq.Request {
	return adminreq.Request{
		ID:             r.ID,
		UserID:         r.UserID,
		Email:          r.Email,
		Status:         r.Status,
		ValidationCode: r.ValidationCode,
		CodeExpiresAt:  r.CodeExpiresAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type adminRequestRepository struct {
	db *sqlx.DB
}

var _ adminreq.Repository = (*adminRequestRepository)(nil) // interface compliance check

func NewAdminRequestRepository(db *sqlx.DB) *adminRequestRepository {
	return &adminRequestRepository{db: db}
}

func (repo adminRequestRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return adminreq.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo adminRequestRepository) CreateRequest(req adminreq.Request) (adminreq.Request, error) {
	req.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO admin_request (id, user_id, email, status, validation_code, code_expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.UserID, req.Email, req.Status, req.ValidationCode, req.CodeExpiresAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return adminreq.Request{}, errors.Wrap(err, "inserting admin request")
	}
	return req, nil
}

func (repo adminRequestRepository) GetRequestByID(id string) (adminreq.Request, error) {
	var row requestRow
	if err := repo.db.Get(&row, `SELECT * FROM admin_request WHERE id = $1`, id); err != nil {
		return adminreq.Request{}, repo.trapNoRowsErr(err, "getting admin request by ID")
	}
	return row.toDomain(), nil
}

func (repo adminRequestRepository) GetRequestByUserID(userID string) (adminreq.Request, error) {
	var row requestRow
	err := repo.db.Get(&row, `SELECT * FROM admin_request WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	if err != nil {
		return adminreq.Request{}, repo.trapNoRowsErr(err, "getting admin request by user ID")
	}
	return row.toDomain(), nil
}

func (repo adminRequestRepository) QueryRequestsByStatus(status string) ([]adminreq.Request, error) {
	var rows []requestRow
	err := repo.db.Select(&rows, `SELECT * FROM admin_request WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, errors.Wrap(err, "querying admin requests by status")
	}
	reqs := make([]adminreq.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toDomain())
	}
	return reqs, nil
}

func (repo adminRequestRepository) UpdateRequest(req adminreq.Request) (adminreq.Request, error) {
	res, err := repo.db.Exec(
		`UPDATE admin_request SET status = $2, validation_code = $3, code_expires_at = $4, updated_at = $5 WHERE id = $1`,
		req.ID, req.Status, req.ValidationCode, req.CodeExpiresAt, req.UpdatedAt,
	)
	if err != nil {
		return adminreq.Request{}, errors.Wrap(err, "updating admin request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return adminreq.Request{}, adminreq.ErrNotFound
	}
	return req, nil
}
