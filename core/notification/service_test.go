package notification_test

import (
	"context"
	"errors"
	"net/mail"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/notification"
	"github.com/roshna21/DevOps-project/storage/database/dummy"
	"github.com/roshna21/DevOps-project/tests"
)

var ctx = context.Background()

type parentFinder struct {
	parents []account.Parent
	err     error
}

func (pf parentFinder) ListParentsByStudent(context.Context, string) ([]account.Parent, error) {
	return pf.parents, pf.err
}

type brokenRepo struct{ notification.Repository }

func (brokenRepo) AppendNotification(context.Context, notification.Notification) error {
	return errors.New("disk full")
}

func newRepo(t *testing.T) notification.Repository {
	db, err := dummydb.Open()
	require.NoError(t, err)
	return dummydb.NewNotificationRepository(db)
}

func TestService_Notify(t *testing.T) {
	now := time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)
	notification.NowFunc = func() time.Time { return now }
	defer func() { notification.NowFunc = time.Now }()

	repo := newRepo(t)
	mailer := new(testutil.Mailer)
	parents := parentFinder{parents: []account.Parent{
		{Name: "Mr. Sharma", Email: "sharma@example.com", StudentUSN: "S1"},
		{Name: "Mrs. Sharma", StudentUSN: "S1"},
	}}
	svc := notification.NewService(repo, parents, mailer, testutil.NewLogger(t))

	svc.Notify(ctx, "S1", "Internal marks updated", "Marks updated for Math (Internal 1): 30")
	svc.Notify(ctx, "S1", "Attendance updated", "Attendance for 2024-03 set to 75%")

	ns, err := svc.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "Attendance updated", ns[0].Title)
	assert.Equal(t, "Internal marks updated", ns[1].Title)
	assert.False(t, ns[0].Read)
	assert.Equal(t, now, ns[0].CreatedAt)

	require.Len(t, mailer.Messages, 2)
	assert.Equal(t, []mail.Address{{Name: "Mr. Sharma", Address: "sharma@example.com"}}, mailer.Messages[0].To)
	assert.Equal(t, "Internal marks updated", mailer.Messages[0].Subject)
	assert.Equal(t, "Marks updated for Math (Internal 1): 30", mailer.Messages[0].BodyStr)

	empty, err := svc.List(ctx, "S2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestService_NotifyFailures(t *testing.T) {
	t.Run("store failure is logged", func(t *testing.T) {
		logger := testutil.NewLogger(t)
		mailer := new(testutil.Mailer)
		svc := notification.NewService(brokenRepo{}, parentFinder{}, mailer, logger)

		svc.Notify(ctx, "S1", "Mentor note updated", "Mentor note updated: Excellent")
		assert.Equal(t, 1, logger.Count("ERROR"))
		assert.Empty(t, mailer.Messages)
	})

	t.Run("parent lookup failure keeps the inbox entry", func(t *testing.T) {
		logger := testutil.NewLogger(t)
		repo := newRepo(t)
		svc := notification.NewService(repo, parentFinder{err: errors.New("db down")}, new(testutil.Mailer), logger)

		svc.Notify(ctx, "S1", "Mentor note updated", "Mentor note updated: Excellent")
		assert.Equal(t, 1, logger.Count("WARN"))

		ns, err := svc.List(ctx, "S1")
		require.NoError(t, err)
		assert.Len(t, ns, 1)
	})
}

func TestService_MarkRead(t *testing.T) {
	repo := newRepo(t)
	svc := notification.NewService(repo, parentFinder{}, new(testutil.Mailer), testutil.NewLogger(t))
	svc.Notify(ctx, "S1", "Attendance updated", "Attendance for 2024-03 set to 75%")

	ns, err := svc.List(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, ns, 1)

	tests := []struct {
		name    string
		usn     string
		id      string
		wantErr error
	}{
		{name: "malformed id", usn: "S1", id: "42", wantErr: notification.ErrNotFound},
		{name: "unknown id", usn: "S1", id: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", wantErr: notification.ErrNotFound},
		{name: "other student", usn: "S2", id: ns[0].ID, wantErr: notification.ErrNotFound},
		{name: "valid", usn: "s1", id: ns[0].ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.MarkRead(ctx, tt.usn, tt.id)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, pkgerrors.Cause(err))
				return
			}
			require.NoError(t, err)
		})
	}

	ns, err = svc.List(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, ns[0].Read)
}
