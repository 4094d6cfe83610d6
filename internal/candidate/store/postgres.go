package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"hiretrack/internal/candidate/models"
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

const candidateColumns = `id, first_name, last_name, email, phone, resume_ref, headline, summary, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var (
		c      models.Candidate
		resume sql.NullString
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &resume,
		&c.Headline, &c.Summary, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if resume.Valid {
		c.ResumeRef = &resume.String
	}
	return &c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Candidate) error {
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO candidates (first_name, last_name, email, phone, resume_ref, headline, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.ResumeRef, c.Headline, c.Summary, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Candidate, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE `+where, arg)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CandidateID) (*models.Candidate, error) {
	return s.findOne(ctx, `id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	return s.findOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []domain.CandidateID) (map[domain.CandidateID]*models.Candidate, error) {
	out := make(map[domain.CandidateID]*models.Candidate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (s *PostgresStore) Exists(ctx context.Context, id domain.CandidateID) (bool, error) {
	var exists bool
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check candidate: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Candidate, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()
	var out []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) First(ctx context.Context) (*models.Candidate, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY id LIMIT 1`)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find first candidate: %w", err)
	}
	return c, nil
}

// Execute locks the row with SELECT ... FOR UPDATE for the rest of the
// surrounding transaction, or a transaction of its own.
func (s *PostgresStore) Execute(ctx context.Context, id domain.CandidateID, validate func(*models.Candidate) error, mutate func(*models.Candidate)) (*models.Candidate, error) {
	var result *models.Candidate
	err := postgres.InTx(ctx, s.db, func(sqlTx *sql.Tx) error {
		row := sqlTx.QueryRowContext(ctx,
			`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 FOR UPDATE`, id)
		c, err := scanCandidate(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock candidate: %w", err)
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)
		_, err = sqlTx.ExecContext(ctx, `
			UPDATE candidates
			SET first_name = $2, last_name = $3, phone = $4, resume_ref = $5,
			    headline = $6, summary = $7, updated_at = $8
			WHERE id = $1`,
			c.ID, c.FirstName, c.LastName, c.Phone, c.ResumeRef, c.Headline, c.Summary, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update candidate: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.CandidateID) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM candidates`); err != nil {
		return fmt.Errorf("delete candidates: %w", err)
	}
	return nil
}
