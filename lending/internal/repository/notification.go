package repository

import (
	"context"
	"fmt"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (r *repository) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	if len(n.Metadata) == 0 {
		n.Metadata = []byte("{}")
	}
	q := fmt.Sprintf(`
insert into %s (id, user_id, type, message, metadata, is_read, created_at)
values (@id, @user_id, @type, @message, @metadata, @is_read, @created_at)`, notificationsTableName)
	args := pgx.NamedArgs{
		"id":         n.ID,
		"user_id":    n.UserID,
		"type":       string(n.Type),
		"message":    n.Message,
		"metadata":   string(n.Metadata),
		"is_read":    n.IsRead,
		"created_at": n.CreatedAt,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		r.log.Error("CreateNotification", zap.Error(err), zap.String("user_id", n.UserID.String()))
		return model.Notification{}, errs.FromPg(err)
	}
	return n, nil
}

func (r *repository) ListNotifications(ctx context.Context, userID uuid.UUID, filter model.NotificationFilter) ([]model.Notification, error) {
	b := qb.Select("id", "user_id", "type", "message", "metadata", "is_read", "created_at").
		From(notificationsTableName).
		Where(sq.Eq{"user_id": userID})
	if filter.IsRead != nil {
		b = b.Where(sq.Eq{"is_read": *filter.IsRead})
	}
	if filter.Type != nil {
		b = b.Where(sq.Eq{"type": string(*filter.Type)})
	}
	query, args, err := b.OrderBy("created_at desc", "id desc").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notification, error) {
		var (
			n    model.Notification
			meta []byte
		)
		if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &meta, &n.IsRead, &n.CreatedAt); err != nil {
			return model.Notification{}, err
		}
		n.Metadata = meta
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return items, nil
}

// MarkNotificationRead is scoped to the owner, so a foreign id looks the same as a missing one.
func (r *repository) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	query, args, err := qb.Update(notificationsTableName).
		Set("is_read", true).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(errs.ErrNotFound, "notification")
	}
	return nil
}

func (r *repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := qb.Select("count(*)").
		From(notificationsTableName).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err = r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
