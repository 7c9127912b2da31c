package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (user_id, kind, message)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := querier(ctx, r.db).QueryRow(ctx, query,
		n.UserID,
		n.Kind,
		n.Message,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert notification",
			zap.Int64("user_id", n.UserID),
			zap.String("kind", n.Kind),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, user_id, kind, message, is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := querier(ctx, r.db).Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, userID int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	_, err := querier(ctx, r.db).Exec(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.Int64("id", id), zap.Error(err))
	}
	return err
}
