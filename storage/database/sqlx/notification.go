package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) AppendNotification(ctx context.Context, n notification.Notification) error {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO notifications (id, student_usn, title, message, read, created_at)
		VALUES (:id, :student_usn, :title, :message, :read, :created_at)`, n)
	return errors.Wrap(err, "inserting notification")
}

func (repo *notificationRepository) ListNotifications(ctx context.Context, usn string) ([]notification.Notification, error) {
	ns := make([]notification.Notification, 0)
	err := repo.db.SelectContext(ctx, &ns,
		`SELECT id, student_usn, title, message, read, created_at FROM notifications
		WHERE student_usn = $1 ORDER BY created_at DESC, id`, usn)
	if err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	for i := range ns {
		ns[i].CreatedAt = ns[i].CreatedAt.UTC()
	}
	return ns, nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, usn, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND student_usn = $2`, id, usn)
	if err != nil {
		return errors.Wrap(err, "updating notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}
