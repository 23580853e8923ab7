package dummydb

import (
	"sync"

	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/notification"
	"github.com/roshna21/DevOps-project/core/student"
)

type (
	// DB is an in-memory record store. Every table guards itself with its own lock.
	DB struct {
		student      *studentTable
		parent       *parentTable
		professor    *professorTable
		notification *notificationTable

		// subjectAttendanceDisabled simulates a store without subject-level attendance.
		subjectAttendanceDisabled bool
	}

	studentRecord struct {
		student    student.Student
		marks      map[string]student.SubjectMark
		attendance map[string]student.SubjectAttendance
		monthly    map[string]int // {month: percentage}
		note       *student.MentorNote
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*studentRecord // {usn: record}
	}

	parentTable struct {
		sync.RWMutex
		table map[string]*account.Parent // {id: parent}
	}

	professorTable struct {
		sync.RWMutex
		table map[string]*account.Professor // {id: professor}
	}

	notificationTable struct {
		sync.RWMutex
		table map[string][]notification.Notification // {usn: notifications, oldest first}
	}
)

type Option func(db *DB)

// WithoutSubjectAttendance makes the store report subject-level attendance as unavailable.
func WithoutSubjectAttendance() Option {
	return func(db *DB) { db.subjectAttendanceDisabled = true }
}

func Open(opts ...Option) (*DB, error) {
	db := &DB{
		student:      &studentTable{table: make(map[string]*studentRecord)},
		parent:       &parentTable{table: make(map[string]*account.Parent)},
		professor:    &professorTable{table: make(map[string]*account.Professor)},
		notification: &notificationTable{table: make(map[string][]notification.Notification)},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.student.Lock()
	db.student.table = make(map[string]*studentRecord)
	db.student.Unlock()

	db.parent.Lock()
	db.parent.table = make(map[string]*account.Parent)
	db.parent.Unlock()

	db.professor.Lock()
	db.professor.table = make(map[string]*account.Professor)
	db.professor.Unlock()

	db.notification.Lock()
	db.notification.table = make(map[string][]notification.Notification)
	db.notification.Unlock()
}

// Close is a no-op: the data lives as long as the process.
func (db *DB) Close() error {
	return nil
}
