package student_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/overlay"
	"github.com/roshna21/DevOps-project/core/seed"
	"github.com/roshna21/DevOps-project/core/student"
	"github.com/roshna21/DevOps-project/storage/database/dummy"
	"github.com/roshna21/DevOps-project/tests"
)

var ctx = context.Background()

type fixture struct {
	repo     student.Repository
	svc      *student.Service
	notifier *testutil.Notifier
	logger   *testutil.Logger
}

func setup(t *testing.T, opts ...dummydb.Option) fixture {
	db, err := dummydb.Open(opts...)
	require.NoError(t, err)
	return setupWithStore(t, dummydb.NewStudentRepository(db), overlay.NewMemoryStore())
}

func setupWithStore(t *testing.T, repo student.Repository, store overlay.Store) fixture {
	validate, _ := testutil.NewValidator()
	f := fixture{
		repo:     repo,
		notifier: new(testutil.Notifier),
		logger:   testutil.NewLogger(t),
	}
	f.svc = student.NewService(repo, store, f.notifier, validate, f.logger)

	now := time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)
	student.NowFunc = testutil.FixedNow(now)
	t.Cleanup(func() { student.NowFunc = time.Now })
	return f
}

type failingStore struct{}

func (failingStore) Load(context.Context, overlay.Namespace, string) (map[string]overlay.Entry, error) {
	return nil, errors.New("overlay down")
}
func (failingStore) Put(context.Context, overlay.Namespace, string, string, overlay.Entry) error {
	return errors.New("overlay down")
}
func (failingStore) Delete(context.Context, overlay.Namespace, string, string) error {
	return errors.New("overlay down")
}

func intPtr(v int) *int { return &v }

func TestService_GetMergedView_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.GetMergedView(ctx, "1AJ23CS999")
	assert.Equal(t, student.ErrNotFound, pkgerrors.Cause(err))
}

func TestService_GetMergedView_SeedsDefaultSubjects(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "1AJ23CS001", "Aarav Sharma", "Unknown Course")

	view, err := f.svc.GetMergedView(ctx, "1aj23cs001")
	require.NoError(t, err)

	assert.ElementsMatch(t, student.DefaultSubjects, view.Subjects)
	require.Len(t, view.Marks, 6)
	for _, sub := range student.DefaultSubjects {
		i1, i2, i3 := seed.Marks("1AJ23CS001", sub)
		assert.Equal(t, student.SubjectMark{Internal1: &i1, Internal2: &i2, Internal3: &i3}, view.Marks[sub], sub)

		attended, held := seed.Attendance("1AJ23CS001", sub)
		assert.Equal(t, student.NewSubjectAttendance(attended, held), view.SubjectAttendance[sub], sub)
	}
	assert.True(t, view.SubjectAttendanceAvailable)
	assert.Equal(t, student.DefaultMentorNote(), view.MentorNote)
	assert.Empty(t, view.MonthlyAttendance)

	// placeholders are sticky
	again, err := f.svc.GetMergedView(ctx, "1AJ23CS001")
	require.NoError(t, err)
	assert.Equal(t, view.Marks, again.Marks)
	assert.Equal(t, view.SubjectAttendance, again.SubjectAttendance)

	// and survive a store write of another subject
	testutil.SetMark(t, f.repo, "1AJ23CS001", "Data Structures", 1, 12)
	after, err := f.svc.GetMergedView(ctx, "1AJ23CS001")
	require.NoError(t, err)
	assert.Len(t, after.Marks, 6)
	assert.Equal(t, view.Marks["Algorithms"], after.Marks["Algorithms"])
}

func TestService_GetMergedView_UsesCourseCatalog(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "1AJ23ME041", "Ajay D'Souza", "Mechanical Engineering")

	view, err := f.svc.GetMergedView(ctx, "1AJ23ME041")
	require.NoError(t, err)
	assert.ElementsMatch(t, student.SubjectsForCourse("Mechanical Engineering"), view.Subjects)
}

func TestService_GetMergedView_StoreValuesWin(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math", "Physics")
	testutil.SetMark(t, f.repo, "S1", "Math", 1, 18)
	require.NoError(t, f.repo.UpsertSubjectAttendance(ctx, "S1", "Math", 0, 0))

	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)

	// no placeholders once the store has marks
	assert.Equal(t, []string{"Math", "Physics"}, view.Subjects)
	assert.Len(t, view.Marks, 1)
	assert.Equal(t, student.SubjectMark{Internal1: intPtr(18)}, view.Marks["Math"])
	assert.Equal(t, student.NewSubjectAttendance(0, 0), view.SubjectAttendance["Math"])
}

func TestService_OverlayPrecedenceAndSettling(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math")
	testutil.SetMark(t, f.repo, "S1", "Math", 2, 28)

	require.NoError(t, f.svc.UpdateMark(ctx, "S1", student.MarkUpdate{Subject: "Math", Internal: 1, Marks: 30}))

	// a stale store value does not hide the pending edit
	testutil.SetMark(t, f.repo, "S1", "Math", 1, 25)
	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, student.SubjectMark{Internal1: intPtr(30), Internal2: intPtr(28)}, view.Marks["Math"])

	// once the store agrees, the edit is settled and later store values show through
	testutil.SetMark(t, f.repo, "S1", "Math", 1, 30)
	_, err = f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	testutil.SetMark(t, f.repo, "S1", "Math", 1, 22)
	view, err = f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, intPtr(22), view.Marks["Math"].Internal1)
}

func TestService_DegradedAttendance(t *testing.T) {
	f := setup(t, dummydb.WithoutSubjectAttendance())
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math", "Physics")
	require.NoError(t, f.repo.UpsertMonthlyAttendance(ctx, "S1", "2024-02", 72))

	seeded := func(subject string) student.SubjectAttendance {
		attended, held := seed.Attendance("S1", subject)
		return student.NewSubjectAttendance(attended, held)
	}

	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.False(t, view.SubjectAttendanceAvailable)
	assert.Len(t, view.Marks, 2)
	assert.Equal(t, map[string]student.SubjectAttendance{
		"Math":    seeded("Math"),
		"Physics": seeded("Physics"),
	}, view.SubjectAttendance)
	assert.Equal(t, []student.MonthlyAttendance{{Month: "2024-02", Percentage: 72}}, view.MonthlyAttendance)

	// subject writes fall back to the current month
	err = f.svc.UpdateSubjectAttendance(ctx, "S1", student.AttendanceUpdate{Subject: "Math", Attended: 9, Held: 12})
	require.NoError(t, err)

	monthly, err := f.repo.FetchMonthlyAttendance(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, []student.MonthlyAttendance{
		{Month: "2024-02", Percentage: 72},
		{Month: "2024-03", Percentage: 75},
	}, monthly)

	last, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, testutil.Sent{USN: "S1", Title: "Attendance updated", Message: "Attendance for 2024-03 set to 75%"}, last)

	// the edited subject shows its counts and the others keep their placeholders
	view, err = f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, map[string]student.SubjectAttendance{
		"Math":    student.NewSubjectAttendance(9, 12),
		"Physics": seeded("Physics"),
	}, view.SubjectAttendance)
	assert.ElementsMatch(t, keysOf(view.Marks), keysOf(view.SubjectAttendance))

	physics := seeded("Physics")
	assert.Equal(t, student.Percent(9+physics.Attended, 12+physics.Held), view.OverallAttendance())
}

func TestService_DegradedAttendanceKeepsSubjectsAligned(t *testing.T) {
	f := setup(t, dummydb.WithoutSubjectAttendance())
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math", "Physics")
	require.NoError(t, f.repo.UpsertMonthlyAttendance(ctx, "S1", "2024-02", 40))

	// an edit before the first read must not hide the other subjects
	err := f.svc.UpdateSubjectAttendance(ctx, "S1", student.AttendanceUpdate{Subject: "Math", Attended: 12, Held: 12})
	require.NoError(t, err)

	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.Len(t, view.Marks, 2)
	assert.ElementsMatch(t, []string{"Math", "Physics"}, keysOf(view.SubjectAttendance))
	assert.Equal(t, student.NewSubjectAttendance(12, 12), view.SubjectAttendance["Math"])
	attended, held := seed.Attendance("S1", "Physics")
	assert.Equal(t, student.Percent(12+attended, 12+held), view.OverallAttendance())
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestService_OverlayFailuresDoNotBreakViews(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	f := setupWithStore(t, dummydb.NewStudentRepository(db), failingStore{})
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math")

	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	i1, i2, i3 := seed.Marks("S1", "Math")
	assert.Equal(t, student.SubjectMark{Internal1: &i1, Internal2: &i2, Internal3: &i3}, view.Marks["Math"])
	assert.True(t, f.logger.Count("ERROR") > 0)

	require.NoError(t, f.svc.UpdateMark(ctx, "S1", student.MarkUpdate{Subject: "Math", Internal: 2, Marks: 33}))
}

func TestService_UpdateMark(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math")

	tests := []struct {
		name        string
		usn         string
		data        student.MarkUpdate
		wantErr     error
		wantInvalid bool
		wantMarks   int
		wantMessage string
	}{
		{name: "unknown student", usn: "S404", data: student.MarkUpdate{Subject: "Math", Internal: 1, Marks: 10}, wantErr: student.ErrNotFound},
		{name: "missing subject", usn: "S1", data: student.MarkUpdate{Internal: 1, Marks: 10}, wantInvalid: true},
		{name: "internal out of range", usn: "S1", data: student.MarkUpdate{Subject: "Math", Internal: 4, Marks: 10}, wantInvalid: true},
		{name: "internal zero", usn: "S1", data: student.MarkUpdate{Subject: "Math", Marks: 10}, wantInvalid: true},
		{
			name: "valid", usn: "S1", data: student.MarkUpdate{Subject: "Math", Internal: 2, Marks: 31},
			wantMarks: 31, wantMessage: "Marks updated for Math (Internal 2): 31",
		},
		{
			name: "marks clamped high", usn: "S1", data: student.MarkUpdate{Subject: "Math", Internal: 2, Marks: 55},
			wantMarks: 40, wantMessage: "Marks updated for Math (Internal 2): 40",
		},
		{
			name: "marks clamped low", usn: "s1", data: student.MarkUpdate{Subject: " Math ", Internal: 2, Marks: -3},
			wantMarks: 0, wantMessage: "Marks updated for Math (Internal 2): 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.UpdateMark(ctx, tt.usn, tt.data)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, pkgerrors.Cause(err))
				return
			case tt.wantInvalid:
				_, ok := pkgerrors.Cause(err).(validator.ValidationErrors)
				assert.True(t, ok, "want validation errors, got %v", err)
				return
			}
			require.NoError(t, err)

			marks, err := f.repo.FetchMarks(ctx, "S1")
			require.NoError(t, err)
			assert.Equal(t, intPtr(tt.wantMarks), marks["Math"].Internal2)

			last, _ := f.notifier.Last()
			assert.Equal(t, "Internal marks updated", last.Title)
			assert.Equal(t, tt.wantMessage, last.Message)
		})
	}
}

func TestService_UpdateSubjectAttendance(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math")

	require.NoError(t, f.svc.UpdateSubjectAttendance(ctx, "S1", student.AttendanceUpdate{Subject: "Math", Attended: -2, Held: 10}))
	att, err := f.repo.FetchSubjectAttendance(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, student.NewSubjectAttendance(0, 10), att["Math"])

	// attended > held is accepted and logged
	require.NoError(t, f.svc.UpdateSubjectAttendance(ctx, "S1", student.AttendanceUpdate{Subject: "Math", Attended: 12, Held: 10}))
	assert.Equal(t, 1, f.logger.Count("WARN"))

	last, _ := f.notifier.Last()
	assert.Equal(t, testutil.Sent{USN: "S1", Title: "Subject attendance updated", Message: "Attendance for Math set to 12/10 (120%)"}, last)

	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, student.NewSubjectAttendance(12, 10), view.SubjectAttendance["Math"])
}

func TestService_UpdateMonthlyAttendance(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math")

	tests := []struct {
		name    string
		data    student.MonthlyUpdate
		wantErr bool
		wantPct int
	}{
		{name: "bad month", data: student.MonthlyUpdate{Month: "2024-13", Percentage: 50}, wantErr: true},
		{name: "missing month", data: student.MonthlyUpdate{Percentage: 50}, wantErr: true},
		{name: "valid", data: student.MonthlyUpdate{Month: "2024-01", Percentage: 64}, wantPct: 64},
		{name: "clamped", data: student.MonthlyUpdate{Month: "2024-01", Percentage: 120}, wantPct: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.UpdateMonthlyAttendance(ctx, "S1", tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			monthly, err := f.repo.FetchMonthlyAttendance(ctx, "S1")
			require.NoError(t, err)
			assert.Equal(t, []student.MonthlyAttendance{{Month: "2024-01", Percentage: tt.wantPct}}, monthly)
		})
	}
}

func TestService_UpdateMentorNote(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "S1", "Asha", "", "Math")

	err := f.svc.UpdateMentorNote(ctx, "S1", student.MentorNoteUpdate{Status: "Great"})
	assert.True(t, core.IsValidationError(err))

	require.NoError(t, f.svc.UpdateMentorNote(ctx, "S1", student.MentorNoteUpdate{Status: student.NoRemarks}))
	last, _ := f.notifier.Last()
	assert.Equal(t, "Mentor note updated: No remarks", last.Message)

	require.NoError(t, f.svc.UpdateMentorNote(ctx, "S1", student.MentorNoteUpdate{Status: student.Excellent, Note: " Top of the class "}))
	last, _ = f.notifier.Last()
	assert.Equal(t, "Mentor note updated", last.Title)
	assert.Equal(t, "Mentor note updated: Excellent - Top of the class", last.Message)

	view, err := f.svc.GetMergedView(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, student.Excellent, view.MentorNote.Status)
	assert.Equal(t, "Top of the class", view.MentorNote.Note)
}

func TestService_Create(t *testing.T) {
	f := setup(t)

	s, err := f.svc.Create(ctx, student.NewStudent{USN: "1aj23ds051", Name: "Kunal Sharma", Course: "Data Science", Semester: 5})
	require.NoError(t, err)
	assert.Equal(t, "1AJ23DS051", s.USN)
	assert.Equal(t, student.SubjectsForCourse("Data Science"), s.Subjects)

	_, err = f.svc.Create(ctx, student.NewStudent{USN: "1AJ23DS051", Name: "Other", Course: "Data Science"})
	assert.True(t, core.IsValidationError(err))

	_, err = f.svc.Create(ctx, student.NewStudent{USN: "bad usn!", Name: "Other", Course: "Data Science"})
	assert.Error(t, err)
}

func TestService_Ensure(t *testing.T) {
	f := setup(t)

	s, err := f.svc.Ensure(ctx, "1AJ23CS099", "")
	require.NoError(t, err)
	assert.Equal(t, "Student 1AJ23CS099", s.Name)
	assert.Equal(t, student.DefaultCourse, s.Course)
	assert.Equal(t, student.DefaultSubjects, s.Subjects)

	s, err = f.svc.Ensure(ctx, "1AJ23CS099", "Riya Das")
	require.NoError(t, err)
	assert.Equal(t, "Riya Das", s.Name)

	got, err := f.repo.GetStudent(ctx, "1AJ23CS099")
	require.NoError(t, err)
	assert.Equal(t, "Riya Das", got.Name)
}
