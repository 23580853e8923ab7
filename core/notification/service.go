// Package notification keeps the parent inbox of every student and mirrors entries by email.
package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")

	NowFunc = time.Now // mockable
)

type Notification struct {
	ID         string    `json:"id" db:"id"`
	StudentUSN string    `json:"student_usn" db:"student_usn"`
	Title      string    `json:"title" db:"title"`
	Message    string    `json:"message" db:"message"`
	Read       bool      `json:"read" db:"read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

type (
	Repository interface {
		AppendNotification(ctx context.Context, n Notification) error
		// ListNotifications returns the notifications of a student, newest first.
		ListNotifications(ctx context.Context, usn string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, usn, id string) error
	}

	// ParentFinder resolves the parents to mirror notifications to; account.Repository is one.
	ParentFinder interface {
		ListParentsByStudent(ctx context.Context, usn string) ([]account.Parent, error)
	}

	Service struct {
		repo    Repository
		parents ParentFinder
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ student.Notifier = (*Service)(nil) // interface compliance check

func NewService(repo Repository, parents ParentFinder, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		parents: parents,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Notify appends a notification to the student's inbox.
// Failures are logged and never returned: a failed notification must not undo the edit that caused it.
func (svc *Service) Notify(ctx context.Context, usn, title, message string) {
	n := Notification{
		ID:         uuid.New().String(),
		StudentUSN: usn,
		Title:      title,
		Message:    message,
		CreatedAt:  NowFunc().UTC(),
	}
	if err := svc.repo.AppendNotification(ctx, n); err != nil {
		svc.logger.Error(fmt.Sprintf("appending notification for %s: %v", usn, err), err)
		return
	}

	parents, err := svc.parents.ListParentsByStudent(ctx, usn)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("finding parents of %s: %v", usn, err), err)
		return
	}

	messages := make([]*core.EmailMessage, 0, len(parents))
	for _, p := range parents {
		if p.Email == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:      []mail.Address{{Name: p.Name, Address: p.Email}},
			Subject: title,
			BodyStr: message,
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
}

func (svc *Service) List(ctx context.Context, usn string) ([]Notification, error) {
	ns, err := svc.repo.ListNotifications(ctx, student.CleanUSN(usn))
	if err != nil {
		return nil, errors.Wrap(err, "listing notifications")
	}
	if ns == nil {
		ns = []Notification{}
	}
	return ns, nil
}

func (svc *Service) MarkRead(ctx context.Context, usn, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return errors.Wrap(svc.repo.MarkNotificationRead(ctx, student.CleanUSN(usn), id), "marking notification read")
}
