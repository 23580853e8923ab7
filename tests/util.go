package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/student"
)

// NewValidator returns a validator and its translator, set up like the API server's.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

// Notifier is a student.Notifier recording every notification.
type Notifier struct {
	mu   sync.Mutex
	Sent []Sent
}

type Sent struct {
	USN, Title, Message string
}

var _ student.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(_ context.Context, usn, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Sent{USN: usn, Title: title, Message: message})
}

func (n *Notifier) Last() (Sent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Sent) == 0 {
		return Sent{}, false
	}
	return n.Sent[len(n.Sent)-1], true
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	usn, name, course string,
	subjects ...string,
) student.Student {
	s := student.Student{
		USN:       usn,
		Name:      name,
		Course:    course,
		Semester:  3,
		Subjects:  subjects,
		CreatedAt: time.Now().UTC(),
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func SetMark(t *testing.T, repo student.Repository, usn, subject string, internal, marks int) {
	if err := repo.UpsertMark(context.Background(), usn, subject, internal, marks); err != nil {
		t.Fatalf("setMark() failed: %v", err)
	}
}

func CreateParent(t *testing.T, repo account.Repository, id, name, mobile, email, usn string) account.Parent {
	p, err := repo.CreateParent(context.Background(), account.Parent{
		ID:         id,
		Name:       name,
		Mobile:     mobile,
		Email:      email,
		StudentUSN: usn,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createParent() failed: %v", err)
	}
	return p
}

func CreateProfessor(t *testing.T, repo account.Repository, id, code, name, mobile, dept string, mentees ...string) account.Professor {
	p, err := repo.CreateProfessor(context.Background(), account.Professor{
		ID:         id,
		Code:       code,
		Name:       name,
		Mobile:     mobile,
		Department: dept,
		Approved:   true,
		MenteeUSNs: mentees,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createProfessor() failed: %v", err)
	}
	return p
}

// FixedNow returns a clock stuck at t, for the packages' mockable NowFunc.
func FixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Mailer is a core.EmailService keeping every message it is asked to send.
type Mailer struct {
	mu       sync.Mutex
	Messages []*core.EmailMessage
}

var _ core.EmailService = (*Mailer)(nil)

func (m *Mailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, messages...)
}
