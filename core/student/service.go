package student

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/overlay"
	"github.com/roshna21/DevOps-project/core/seed"
)

var (
	// errors
	ErrNotFound  = errors.New("student not found")
	ErrUSNExists = errors.New("a student with this USN already exists")

	// ErrCapabilityUnavailable is returned by a Repository that has no subject-level attendance.
	ErrCapabilityUnavailable = errors.New("subject attendance is not available")

	NowFunc = time.Now // mockable
)

// MonthKey formats t as a YYYY-MM month key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

type (
	// Repository is the record store of students and their academic records.
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, usn string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)

		FetchMarks(ctx context.Context, usn string) (map[string]SubjectMark, error)
		UpsertMark(ctx context.Context, usn, subject string, internal, marks int) error

		// FetchSubjectAttendance returns ErrCapabilityUnavailable when the store has no subject-level data.
		FetchSubjectAttendance(ctx context.Context, usn string) (map[string]SubjectAttendance, error)
		UpsertSubjectAttendance(ctx context.Context, usn, subject string, attended, held int) error

		// FetchMonthlyAttendance returns the records ordered by month.
		FetchMonthlyAttendance(ctx context.Context, usn string) ([]MonthlyAttendance, error)
		UpsertMonthlyAttendance(ctx context.Context, usn, month string, percentage int) error

		// FetchMentorNote returns nil when the student has no note.
		FetchMentorNote(ctx context.Context, usn string) (*MentorNote, error)
		UpsertMentorNote(ctx context.Context, usn string, note MentorNote) error
	}

	// Notifier informs the parents of a student. Delivery is best-effort.
	Notifier interface {
		Notify(ctx context.Context, usn, title, message string)
	}

	Service struct {
		repo       Repository
		marks      *overlay.Cache
		attendance *overlay.Cache
		notifier   Notifier
		validate   *validator.Validate
		logger     core.Logger
	}
)

func NewService(
	repo Repository,
	store overlay.Store,
	notifier Notifier,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		marks:      overlay.New(store, overlay.Marks, logger),
		attendance: overlay.New(store, overlay.Attendance, logger),
		notifier:   notifier,
		validate:   validate,
		logger:     logger,
	}
}

func (svc *Service) GetStudent(ctx context.Context, usn string) (Student, error) {
	return svc.repo.GetStudent(ctx, CleanUSN(usn))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.Search = core.CleanString(filter.Search)
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) Create(ctx context.Context, data NewStudent) (Student, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if _, err := svc.repo.GetStudent(ctx, data.USN); err == nil {
		return Student{}, core.NewValidationError(ErrUSNExists, core.FieldError{Field: "usn", Error: ErrUSNExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return Student{}, errors.Wrap(err, "checking USN uniqueness")
	}

	s, err := svc.repo.CreateStudent(ctx, Student{
		USN:       data.USN,
		Name:      data.Name,
		Course:    data.Course,
		Semester:  data.Semester,
		Subjects:  SubjectsForCourse(data.Course),
		CreatedAt: NowFunc().UTC(),
	})
	if errors.Cause(err) == ErrUSNExists {
		return Student{}, core.NewValidationError(ErrUSNExists, core.FieldError{Field: "usn", Error: ErrUSNExists.Error()})
	}
	return s, errors.Wrap(err, "creating student")
}

// Ensure returns the student of usn, creating a minimal record when absent.
// A non-empty name replaces the stored one.
func (svc *Service) Ensure(ctx context.Context, usn, name string) (Student, error) {
	usn = CleanUSN(usn)
	name = core.CleanString(name)

	s, err := svc.repo.GetStudent(ctx, usn)
	switch {
	case err == nil:
		if name == "" || name == s.Name {
			return s, nil
		}
		s.Name = name
		s, err = svc.repo.UpdateStudent(ctx, s)
		return s, errors.Wrap(err, "updating student")
	case errors.Cause(err) != ErrNotFound:
		return Student{}, errors.Wrap(err, "finding student")
	}

	if name == "" {
		name = "Student " + usn
	}
	s, err = svc.repo.CreateStudent(ctx, Student{
		USN:       usn,
		Name:      name,
		Course:    DefaultCourse,
		Semester:  1,
		Subjects:  SubjectsForCourse(DefaultCourse),
		CreatedAt: NowFunc().UTC(),
	})
	return s, errors.Wrap(err, "creating student")
}

// GetMergedView reconciles the records of a student.
// Precedence per field: overlay edit, then store value, then placeholder.
func (svc *Service) GetMergedView(ctx context.Context, usn string) (View, error) {
	usn = CleanUSN(usn)
	s, err := svc.repo.GetStudent(ctx, usn)
	if err != nil {
		return View{}, errors.Wrap(err, "finding student")
	}

	marks, err := svc.mergedMarks(ctx, s)
	if err != nil {
		return View{}, err
	}

	attendance, available, err := svc.mergedAttendance(ctx, s, marks)
	if err != nil {
		return View{}, err
	}

	monthly, err := svc.repo.FetchMonthlyAttendance(ctx, usn)
	if err != nil {
		return View{}, errors.Wrap(err, "fetching monthly attendance")
	}
	if monthly == nil {
		monthly = []MonthlyAttendance{}
	}

	note := DefaultMentorNote()
	if n, err := svc.repo.FetchMentorNote(ctx, usn); err != nil {
		return View{}, errors.Wrap(err, "fetching mentor note")
	} else if n != nil {
		note = *n
	}

	return View{
		Student:                    s,
		Subjects:                   orderSubjects(s, keys(marks), keys(attendance)),
		Marks:                      marks,
		SubjectAttendance:          attendance,
		MonthlyAttendance:          monthly,
		MentorNote:                 note,
		SubjectAttendanceAvailable: available,
	}, nil
}

func (svc *Service) mergedMarks(ctx context.Context, s Student) (map[string]SubjectMark, error) {
	truth, err := svc.repo.FetchMarks(ctx, s.USN)
	if err != nil {
		return nil, errors.Wrap(err, "fetching marks")
	}
	truthEntries := marksToEntries(truth)
	svc.marks.Settle(ctx, s.USN, truthEntries)

	merged := svc.marks.MergeOverTruth(ctx, s.USN, truthEntries)
	if len(merged) == 0 {
		for _, sub := range CanonicalSubjects(s) {
			i1, i2, i3 := seed.Marks(s.USN, sub)
			e := overlay.Entry{Internal1: overlay.Int(i1), Internal2: overlay.Int(i2), Internal3: overlay.Int(i3)}
			svc.marks.Set(ctx, s.USN, sub, e)
			merged[sub] = e
		}
	}
	return entriesToMarks(merged), nil
}

// mergedAttendance gives every subject of marks an attendance entry.
// Without subject-level attendance in the store, only the overlay and
// placeholders remain, and available is false.
func (svc *Service) mergedAttendance(
	ctx context.Context,
	s Student,
	marks map[string]SubjectMark,
) (map[string]SubjectAttendance, bool, error) {
	available := true
	truthEntries := map[string]overlay.Entry{}

	truth, err := svc.repo.FetchSubjectAttendance(ctx, s.USN)
	if err != nil {
		if errors.Cause(err) != ErrCapabilityUnavailable {
			svc.logger.Warn(fmt.Sprintf("subject attendance lookup failed for %s, using monthly records: %v", s.USN, err), err)
		}
		available = false
	} else {
		truthEntries = attendanceToEntries(truth)
		svc.attendance.Settle(ctx, s.USN, truthEntries)
	}
	merged := svc.attendance.MergeOverTruth(ctx, s.USN, truthEntries)

	for sub := range marks {
		if _, ok := merged[sub]; ok {
			continue
		}
		attended, held := seed.Attendance(s.USN, sub)
		e := overlay.Entry{Attended: overlay.Int(attended), Held: overlay.Int(held)}
		svc.attendance.Set(ctx, s.USN, sub, e)
		merged[sub] = e
	}
	return entriesToAttendance(merged), available, nil
}

// UpdateMark writes one internal score, then records it in the overlay and notifies the parents.
func (svc *Service) UpdateMark(ctx context.Context, usn string, data MarkUpdate) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}
	s, err := svc.GetStudent(ctx, usn)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	if err := svc.repo.UpsertMark(ctx, s.USN, data.Subject, data.Internal, data.Marks); err != nil {
		return errors.Wrap(err, "upserting mark")
	}

	e := overlay.Entry{}
	switch data.Internal {
	case 1:
		e.Internal1 = overlay.Int(data.Marks)
	case 2:
		e.Internal2 = overlay.Int(data.Marks)
	case 3:
		e.Internal3 = overlay.Int(data.Marks)
	}
	svc.marks.Set(ctx, s.USN, data.Subject, e)

	svc.notifier.Notify(ctx, s.USN,
		"Internal marks updated",
		fmt.Sprintf("Marks updated for %s (Internal %d): %d", data.Subject, data.Internal, data.Marks),
	)
	return nil
}

// UpdateSubjectAttendance writes the class counts of a subject.
// Stores without subject-level attendance get the current month's percentage instead.
func (svc *Service) UpdateSubjectAttendance(ctx context.Context, usn string, data AttendanceUpdate) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}
	s, err := svc.GetStudent(ctx, usn)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	if data.Attended > data.Held {
		svc.logger.Warn(fmt.Sprintf("attendance for %s/%s has attended > held (%d/%d)", s.USN, data.Subject, data.Attended, data.Held))
	}

	pct := Percent(data.Attended, data.Held)
	err = svc.repo.UpsertSubjectAttendance(ctx, s.USN, data.Subject, data.Attended, data.Held)
	switch {
	case errors.Cause(err) == ErrCapabilityUnavailable:
		month := MonthKey(NowFunc())
		if err := svc.repo.UpsertMonthlyAttendance(ctx, s.USN, month, clamp(pct, 0, MaxPercent)); err != nil {
			return errors.Wrap(err, "upserting monthly attendance")
		}
		svc.attendance.Set(ctx, s.USN, data.Subject, overlay.Entry{Attended: overlay.Int(data.Attended), Held: overlay.Int(data.Held)})
		svc.notifier.Notify(ctx, s.USN,
			"Attendance updated",
			fmt.Sprintf("Attendance for %s set to %d%%", month, clamp(pct, 0, MaxPercent)),
		)
		return nil
	case err != nil:
		return errors.Wrap(err, "upserting subject attendance")
	}

	svc.attendance.Set(ctx, s.USN, data.Subject, overlay.Entry{Attended: overlay.Int(data.Attended), Held: overlay.Int(data.Held)})
	svc.notifier.Notify(ctx, s.USN,
		"Subject attendance updated",
		fmt.Sprintf("Attendance for %s set to %d/%d (%d%%)", data.Subject, data.Attended, data.Held, pct),
	)
	return nil
}

func (svc *Service) UpdateMonthlyAttendance(ctx context.Context, usn string, data MonthlyUpdate) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}
	s, err := svc.GetStudent(ctx, usn)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	if err := svc.repo.UpsertMonthlyAttendance(ctx, s.USN, data.Month, data.Percentage); err != nil {
		return errors.Wrap(err, "upserting monthly attendance")
	}
	svc.notifier.Notify(ctx, s.USN,
		"Attendance updated",
		fmt.Sprintf("Attendance for %s set to %d%%", data.Month, data.Percentage),
	)
	return nil
}

func (svc *Service) UpdateMentorNote(ctx context.Context, usn string, data MentorNoteUpdate) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}
	s, err := svc.GetStudent(ctx, usn)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	note := MentorNote{Status: data.Status, Note: data.Note, UpdatedAt: NowFunc().UTC()}
	if err := svc.repo.UpsertMentorNote(ctx, s.USN, note); err != nil {
		return errors.Wrap(err, "upserting mentor note")
	}

	msg := "Mentor note updated: " + string(note.Status)
	if note.Note != "" {
		msg += " - " + note.Note
	}
	svc.notifier.Notify(ctx, s.USN, "Mentor note updated", msg)
	return nil
}

func keys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func marksToEntries(marks map[string]SubjectMark) map[string]overlay.Entry {
	entries := make(map[string]overlay.Entry, len(marks))
	for sub, m := range marks {
		entries[sub] = overlay.Entry{Internal1: m.Internal1, Internal2: m.Internal2, Internal3: m.Internal3}
	}
	return entries
}

func entriesToMarks(entries map[string]overlay.Entry) map[string]SubjectMark {
	marks := make(map[string]SubjectMark, len(entries))
	for sub, e := range entries {
		marks[sub] = SubjectMark{Internal1: e.Internal1, Internal2: e.Internal2, Internal3: e.Internal3}
	}
	return marks
}

func attendanceToEntries(att map[string]SubjectAttendance) map[string]overlay.Entry {
	entries := make(map[string]overlay.Entry, len(att))
	for sub, a := range att {
		entries[sub] = overlay.Entry{Attended: overlay.Int(a.Attended), Held: overlay.Int(a.Held)}
	}
	return entries
}

func entriesToAttendance(entries map[string]overlay.Entry) map[string]SubjectAttendance {
	att := make(map[string]SubjectAttendance, len(entries))
	for sub, e := range entries {
		var attended, held int
		if e.Attended != nil {
			attended = *e.Attended
		}
		if e.Held != nil {
			held = *e.Held
		}
		att[sub] = NewSubjectAttendance(attended, held)
	}
	return att
}
