package dummydb

import (
	"context"

	"github.com/roshna21/DevOps-project/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) AppendNotification(_ context.Context, n notification.Notification) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[n.StudentUSN] = append(repo.db.table[n.StudentUSN], n)
	return nil
}

func (repo *notificationRepository) ListNotifications(_ context.Context, usn string) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	stored := repo.db.table[usn]
	ns := make([]notification.Notification, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		ns = append(ns, stored[i])
	}
	return ns, nil
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, usn, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, n := range repo.db.table[usn] {
		if n.ID == id {
			repo.db.table[usn][i].Read = true
			return nil
		}
	}
	return notification.ErrNotFound
}
