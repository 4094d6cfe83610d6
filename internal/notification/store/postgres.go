package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"hiretrack/internal/notification/models"
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

const notificationColumns = `id, user_id, type, title, message, job_id, application_id, is_read, read_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n            models.Notification
		typ          string
		jobID, appID sql.NullInt64
		readAt       sql.NullTime
	)
	err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &jobID, &appID, &n.IsRead, &readAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = models.Type(typ)
	if jobID.Valid {
		id := domain.JobID(jobID.Int64)
		n.JobID = &id
	}
	if appID.Valid {
		id := domain.ApplicationID(appID.Int64)
		n.ApplicationID = &id
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	return &n, nil
}

// CreateMany inserts the batch with a single unnest statement so a job
// posting to N candidates costs one round trip.
func (s *PostgresStore) CreateMany(ctx context.Context, ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	var (
		userIDs  = make([]int64, len(ns))
		types    = make([]string, len(ns))
		titles   = make([]string, len(ns))
		messages = make([]string, len(ns))
		jobIDs   = make([]sql.NullInt64, len(ns))
		appIDs   = make([]sql.NullInt64, len(ns))
		created  = make([]time.Time, len(ns))
	)
	for i, n := range ns {
		userIDs[i] = int64(n.UserID)
		types[i] = string(n.Type)
		titles[i] = n.Title
		messages[i] = n.Message
		if n.JobID != nil {
			jobIDs[i] = sql.NullInt64{Int64: int64(*n.JobID), Valid: true}
		}
		if n.ApplicationID != nil {
			appIDs[i] = sql.NullInt64{Int64: int64(*n.ApplicationID), Valid: true}
		}
		created[i] = n.CreatedAt
	}

	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, job_id, application_id, created_at)
		SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[], $4::text[], $5::bigint[], $6::bigint[], $7::timestamptz[])
		RETURNING id`,
		pq.Array(userIDs), pq.Array(types), pq.Array(titles), pq.Array(messages),
		pq.Array(jobIDs), pq.Array(appIDs), pq.Array(created),
	)
	if err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	defer rows.Close()
	i := 0
	for rows.Next() {
		if i >= len(ns) {
			return fmt.Errorf("insert notifications: more ids than rows")
		}
		if err := rows.Scan(&ns[i].ID); err != nil {
			return fmt.Errorf("scan notification id: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	if i != len(ns) {
		return fmt.Errorf("insert notifications: inserted %d of %d", i, len(ns))
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error) {
	n, err := scanNotification(postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID, unreadOnly bool) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountUnread(ctx context.Context, userID domain.UserID) (int, error) {
	var count int
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Execute(ctx context.Context, id domain.NotificationID, validate func(*models.Notification) error, mutate func(*models.Notification)) (*models.Notification, error) {
	var result *models.Notification
	err := postgres.InTx(ctx, s.db, func(sqlTx *sql.Tx) error {
		n, err := scanNotification(sqlTx.QueryRowContext(ctx,
			`SELECT `+notificationColumns+` FROM notifications WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock notification: %w", err)
		}
		if err := validate(n); err != nil {
			return err
		}
		mutate(n)
		if _, err := sqlTx.ExecContext(ctx,
			`UPDATE notifications SET is_read = $2, read_at = $3 WHERE id = $1`,
			n.ID, n.IsRead, n.ReadAt); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		result = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, userID domain.UserID, now time.Time) (int, error) {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE user_id = $1 AND NOT is_read`,
		userID, now)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
