package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"hiretrack/internal/job/models"
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

const jobColumns = `id, title, description, positions, department, created_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		j         models.Job
		createdBy sql.NullInt64
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Positions, &j.Department, &createdBy, &j.CreatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		by := domain.UserID(createdBy.Int64)
		j.CreatedBy = &by
	}
	return &j, nil
}

func (s *PostgresStore) Create(ctx context.Context, j *models.Job) error {
	var createdBy sql.NullInt64
	if j.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: int64(*j.CreatedBy), Valid: true}
	}
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO jobs (title, description, positions, department, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		j.Title, j.Description, j.Positions, j.Department, createdBy, j.CreatedAt,
	).Scan(&j.ID)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.JobID) (*models.Job, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []domain.JobID) (map[domain.JobID]*models.Job, error) {
	out := make(map[domain.JobID]*models.Job, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find jobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out[j.ID] = j
	}
	return out, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context, department string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if d := strings.TrimSpace(department); d != "" {
		query += ` WHERE LOWER(department) = LOWER($1)`
		args = append(args, d)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	var out []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Execute(ctx context.Context, id domain.JobID, validate func(*models.Job) error, mutate func(*models.Job)) (*models.Job, error) {
	var result *models.Job
	err := postgres.InTx(ctx, s.db, func(sqlTx *sql.Tx) error {
		j, err := scanJob(sqlTx.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock job: %w", err)
		}
		if err := validate(j); err != nil {
			return err
		}
		mutate(j)
		_, err = sqlTx.ExecContext(ctx, `
			UPDATE jobs SET title = $2, description = $3, positions = $4, department = $5
			WHERE id = $1`,
			j.ID, j.Title, j.Description, j.Positions, j.Department)
		if err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		result = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.JobID) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return fmt.Errorf("delete jobs: %w", err)
	}
	return nil
}
