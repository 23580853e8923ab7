package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/roshna21/DevOps-project/core/student"
)

type studentRepository struct {
	db                        *studentTable
	subjectAttendanceDisabled bool
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student, subjectAttendanceDisabled: db.subjectAttendanceDisabled}
}

func copyStudent(s student.Student) student.Student {
	s.Subjects = append([]string(nil), s.Subjects...)
	return s
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.USN]; ok {
		return student.Student{}, student.ErrUSNExists
	}
	repo.db.table[s.USN] = &studentRecord{
		student:    copyStudent(s),
		marks:      make(map[string]student.SubjectMark),
		attendance: make(map[string]student.SubjectAttendance),
		monthly:    make(map[string]int),
	}
	return copyStudent(s), nil
}

func (repo *studentRepository) GetStudent(_ context.Context, usn string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[usn]; ok {
		return copyStudent(rec.student), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[s.USN]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	rec.student.Name = s.Name
	rec.student.Course = s.Course
	rec.student.Semester = s.Semester
	if s.Subjects != nil {
		rec.student.Subjects = append([]string(nil), s.Subjects...)
	}
	return copyStudent(rec.student), nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var usns map[string]bool
	if len(filter.USNs) > 0 {
		usns = make(map[string]bool, len(filter.USNs))
		for _, usn := range filter.USNs {
			usns[usn] = true
		}
	}
	search := strings.ToLower(filter.Search)

	students := make([]student.Student, 0)
	for _, rec := range repo.db.table {
		s := rec.student
		if usns != nil && !usns[s.USN] {
			continue
		}
		if filter.Course != "" && s.Course != filter.Course {
			continue
		}
		if filter.Semester != 0 && s.Semester != filter.Semester {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.USN), search) {
			continue
		}
		students = append(students, copyStudent(s))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].USN < students[j].USN })
	return students, nil
}

func (repo *studentRepository) record(usn string) (*studentRecord, error) {
	rec, ok := repo.db.table[usn]
	if !ok {
		return nil, student.ErrNotFound
	}
	return rec, nil
}

func (repo *studentRepository) FetchMarks(_ context.Context, usn string) (map[string]student.SubjectMark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rec, err := repo.record(usn)
	if err != nil {
		return nil, err
	}
	marks := make(map[string]student.SubjectMark, len(rec.marks))
	for sub, m := range rec.marks {
		marks[sub] = m
	}
	return marks, nil
}

func (repo *studentRepository) UpsertMark(_ context.Context, usn, subject string, internal, marks int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, err := repo.record(usn)
	if err != nil {
		return err
	}
	m := rec.marks[subject]
	v := marks
	switch internal {
	case 1:
		m.Internal1 = &v
	case 2:
		m.Internal2 = &v
	case 3:
		m.Internal3 = &v
	}
	rec.marks[subject] = m
	return nil
}

func (repo *studentRepository) FetchSubjectAttendance(_ context.Context, usn string) (map[string]student.SubjectAttendance, error) {
	if repo.subjectAttendanceDisabled {
		return nil, student.ErrCapabilityUnavailable
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	rec, err := repo.record(usn)
	if err != nil {
		return nil, err
	}
	att := make(map[string]student.SubjectAttendance, len(rec.attendance))
	for sub, a := range rec.attendance {
		att[sub] = a
	}
	return att, nil
}

func (repo *studentRepository) UpsertSubjectAttendance(_ context.Context, usn, subject string, attended, held int) error {
	if repo.subjectAttendanceDisabled {
		return student.ErrCapabilityUnavailable
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, err := repo.record(usn)
	if err != nil {
		return err
	}
	rec.attendance[subject] = student.NewSubjectAttendance(attended, held)
	return nil
}

func (repo *studentRepository) FetchMonthlyAttendance(_ context.Context, usn string) ([]student.MonthlyAttendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rec, err := repo.record(usn)
	if err != nil {
		return nil, err
	}
	monthly := make([]student.MonthlyAttendance, 0, len(rec.monthly))
	for month, pct := range rec.monthly {
		monthly = append(monthly, student.MonthlyAttendance{Month: month, Percentage: pct})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })
	return monthly, nil
}

func (repo *studentRepository) UpsertMonthlyAttendance(_ context.Context, usn, month string, percentage int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, err := repo.record(usn)
	if err != nil {
		return err
	}
	rec.monthly[month] = percentage
	return nil
}

func (repo *studentRepository) FetchMentorNote(_ context.Context, usn string) (*student.MentorNote, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rec, err := repo.record(usn)
	if err != nil {
		return nil, err
	}
	if rec.note == nil {
		return nil, nil
	}
	note := *rec.note
	return &note, nil
}

func (repo *studentRepository) UpsertMentorNote(_ context.Context, usn string, note student.MentorNote) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, err := repo.record(usn)
	if err != nil {
		return err
	}
	rec.note = &note
	return nil
}
