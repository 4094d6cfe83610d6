package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hiretrack/internal/identity/models"
	"hiretrack/internal/platform/postgres"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
)

// PostgresStore persists users in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, username, email, password_hash, role, candidate_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		role      string
		candidate sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &candidate, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if candidate.Valid {
		u.LinkCandidate(domain.CandidateID(candidate.Int64))
	}
	return &u, nil
}

func nullableCandidate(id *domain.CandidateID) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, candidate_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, string(u.Role), nullableCandidate(u.CandidateID), u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) SetCandidate(ctx context.Context, id domain.UserID, candidateID *domain.CandidateID) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET candidate_id = $2 WHERE id = $1`, id, nullableCandidate(candidateID))
	if err != nil {
		return fmt.Errorf("link candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link candidate: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UnlinkCandidate(ctx context.Context, candidateID domain.CandidateID) (int, error) {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET candidate_id = NULL WHERE candidate_id = $1`, candidateID)
	if err != nil {
		return 0, fmt.Errorf("unlink candidate: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) ListIDsByRole(ctx context.Context, role domain.Role) ([]domain.UserID, error) {
	return s.listIDs(ctx, `SELECT id FROM users WHERE role = $1 ORDER BY id`, string(role))
}

func (s *PostgresStore) ListIDsByCandidate(ctx context.Context, candidateID domain.CandidateID) ([]domain.UserID, error) {
	return s.listIDs(ctx, `SELECT id FROM users WHERE candidate_id = $1 ORDER BY id`, candidateID)
}

func (s *PostgresStore) listIDs(ctx context.Context, query string, arg any) ([]domain.UserID, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []domain.UserID
	for rows.Next() {
		var id domain.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
