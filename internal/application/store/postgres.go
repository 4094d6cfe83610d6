package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"hiretrack/internal/application/models"
	"hiretrack/internal/platform/postgres"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const applicationColumns = `id, candidate_id, job_id, application_date, status, cover_letter, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	var status string
	err := row.Scan(&a.ID, &a.CandidateID, &a.JobID, &a.ApplicationDate, &status,
		&a.CoverLetter, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.Status(status)
	a.ApplicationDate = models.DateOf(a.ApplicationDate)
	return &a, nil
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Application) error {
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO applications (candidate_id, job_id, application_date, status, cover_letter, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.CandidateID, a.JobID, a.ApplicationDate, string(a.Status), a.CoverLetter, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	a, err := scanApplication(postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return a, nil
}

// List builds the WHERE clause from the non-empty parts of f.
func (s *PostgresStore) List(ctx context.Context, f models.Filter) ([]*models.Application, error) {
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return nil, nil
	}
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.CandidateID != nil {
		where = append(where, "candidate_id = "+arg(*f.CandidateID))
	}
	if f.Status != nil {
		where = append(where, "status = "+arg(string(*f.Status)))
	}
	if f.JobIDs != nil {
		raw := make([]int64, len(f.JobIDs))
		for i, id := range f.JobIDs {
			raw[i] = int64(id)
		}
		where = append(where, "job_id = ANY("+arg(pq.Array(raw))+")")
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY application_date DESC, id ASC`

	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	var out []*models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Exists(ctx context.Context, candidateID domain.CandidateID, jobID domain.JobID, date time.Time) (bool, error) {
	var exists bool
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE candidate_id = $1 AND job_id = $2 AND application_date = $3
		)`, candidateID, jobID, models.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// Execute holds a row lock from the read through the update so concurrent
// transitions serialize on the application.
func (s *PostgresStore) Execute(ctx context.Context, id domain.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	var result *models.Application
	err := postgres.InTx(ctx, s.db, func(sqlTx *sql.Tx) error {
		a, err := scanApplication(sqlTx.QueryRowContext(ctx,
			`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock application: %w", err)
		}
		if err := validate(a); err != nil {
			return err
		}
		mutate(a)
		_, err = sqlTx.ExecContext(ctx,
			`UPDATE applications SET status = $2, cover_letter = $3, updated_at = $4 WHERE id = $1`,
			a.ID, string(a.Status), a.CoverLetter, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) DeleteByCandidate(ctx context.Context, candidateID domain.CandidateID) (int, error) {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM applications WHERE candidate_id = $1`, candidateID)
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) DeleteByJob(ctx context.Context, jobID domain.JobID) (int, error) {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM applications WHERE job_id = $1`, jobID)
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM applications`); err != nil {
		return fmt.Errorf("delete applications: %w", err)
	}
	return nil
}
