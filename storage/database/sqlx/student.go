package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/roshna21/DevOps-project/core/student"
)

type (
	studentRepository struct {
		db *sqlx.DB
	}

	studentRow struct {
		USN       string    `db:"usn"`
		Name      string    `db:"name"`
		Course    string    `db:"course"`
		Semester  int       `db:"semester"`
		CreatedAt time.Time `db:"created_at"`
	}

	subjectRow struct {
		StudentUSN string `db:"student_usn"`
		Subject    string `db:"subject"`
	}

	markRow struct {
		Subject   string   `db:"subject"`
		Internal1 null.Int `db:"internal1"`
		Internal2 null.Int `db:"internal2"`
		Internal3 null.Int `db:"internal3"`
	}

	attendanceRow struct {
		Subject  string `db:"subject"`
		Attended int    `db:"attended"`
		Held     int    `db:"held"`
	}
)

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (row studentRow) toStudent(subjects []string) student.Student {
	if subjects == nil {
		subjects = []string{}
	}
	return student.Student{
		USN:       row.USN,
		Name:      row.Name,
		Course:    row.Course,
		Semester:  row.Semester,
		Subjects:  subjects,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func replaceSubjects(ctx context.Context, tx *sqlx.Tx, usn string, subjects []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM student_subjects WHERE student_usn = $1`, usn); err != nil {
		return errors.Wrap(err, "clearing subjects")
	}
	for i, sub := range subjects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO student_subjects (student_usn, subject, position) VALUES ($1, $2, $3)
			ON CONFLICT (student_usn, subject) DO NOTHING`,
			usn, sub, i,
		); err != nil {
			return errors.Wrap(err, "inserting subject")
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO students (usn, name, course, semester, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.USN, s.Name, s.Course, s.Semester, s.CreatedAt,
	)
	if isUniqueViolation(err) {
		return student.Student{}, student.ErrUSNExists
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	if err = replaceSubjects(ctx, tx, s.USN, s.Subjects); err != nil {
		return student.Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing transaction")
	}
	return repo.GetStudent(ctx, s.USN)
}

func (repo *studentRepository) GetStudent(ctx context.Context, usn string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT usn, name, course, semester, created_at FROM students WHERE usn = $1`, usn)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "selecting student")
	}

	subjects, err := repo.subjectsOf(ctx, usn)
	if err != nil {
		return student.Student{}, err
	}
	return row.toStudent(subjects[usn]), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE students SET name = $2, course = $3, semester = $4 WHERE usn = $1`,
		s.USN, s.Name, s.Course, s.Semester,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	if s.Subjects != nil {
		if err = replaceSubjects(ctx, tx, s.USN, s.Subjects); err != nil {
			return student.Student{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing transaction")
	}
	return repo.GetStudent(ctx, s.USN)
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	var usns interface{}
	if len(filter.USNs) > 0 {
		usns = pq.Array(filter.USNs)
	}
	search := ""
	if filter.Search != "" {
		search = "%" + filter.Search + "%"
	}

	rows := make([]studentRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT usn, name, course, semester, created_at FROM students
		WHERE ($1::text[] IS NULL OR usn = ANY($1::text[]))
			AND ($2::text = '' OR course = $2::text)
			AND ($3::int = 0 OR semester = $3::int)
			AND ($4::text = '' OR name ILIKE $4::text OR usn ILIKE $4::text)
		ORDER BY usn`,
		usns, filter.Course, filter.Semester, search,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.USN)
	}
	subjects, err := repo.subjectsOf(ctx, keys...)
	if err != nil {
		return nil, err
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent(subjects[row.USN]))
	}
	return students, nil
}

// subjectsOf returns the ordered subject lists of the students, keyed by USN.
func (repo *studentRepository) subjectsOf(ctx context.Context, usns ...string) (map[string][]string, error) {
	subjects := make(map[string][]string, len(usns))
	if len(usns) == 0 {
		return subjects, nil
	}

	rows := make([]subjectRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT student_usn, subject FROM student_subjects
		WHERE student_usn = ANY($1) ORDER BY student_usn, position`,
		pq.Array(usns),
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	for _, row := range rows {
		subjects[row.StudentUSN] = append(subjects[row.StudentUSN], row.Subject)
	}
	return subjects, nil
}

func (repo *studentRepository) FetchMarks(ctx context.Context, usn string) (map[string]student.SubjectMark, error) {
	rows := make([]markRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT subject, internal1, internal2, internal3 FROM marks WHERE student_usn = $1`, usn)
	if err != nil {
		return nil, errors.Wrap(err, "selecting marks")
	}

	marks := make(map[string]student.SubjectMark, len(rows))
	for _, row := range rows {
		marks[row.Subject] = student.SubjectMark{
			Internal1: row.Internal1.Ptr(),
			Internal2: row.Internal2.Ptr(),
			Internal3: row.Internal3.Ptr(),
		}
	}
	return marks, nil
}

var upsertMarkQueries = map[int]string{
	1: `INSERT INTO marks (student_usn, subject, internal1) VALUES ($1, $2, $3)
		ON CONFLICT (student_usn, subject) DO UPDATE SET internal1 = EXCLUDED.internal1, updated_at = now() AT TIME ZONE 'utc'`,
	2: `INSERT INTO marks (student_usn, subject, internal2) VALUES ($1, $2, $3)
		ON CONFLICT (student_usn, subject) DO UPDATE SET internal2 = EXCLUDED.internal2, updated_at = now() AT TIME ZONE 'utc'`,
	3: `INSERT INTO marks (student_usn, subject, internal3) VALUES ($1, $2, $3)
		ON CONFLICT (student_usn, subject) DO UPDATE SET internal3 = EXCLUDED.internal3, updated_at = now() AT TIME ZONE 'utc'`,
}

func (repo *studentRepository) UpsertMark(ctx context.Context, usn, subject string, internal, marks int) error {
	q, ok := upsertMarkQueries[internal]
	if !ok {
		return errors.Errorf("invalid internal %d", internal)
	}
	_, err := repo.db.ExecContext(ctx, q, usn, subject, null.IntFrom(marks))
	if isForeignKeyViolation(err) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, "upserting mark")
}

func (repo *studentRepository) FetchSubjectAttendance(ctx context.Context, usn string) (map[string]student.SubjectAttendance, error) {
	rows := make([]attendanceRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT subject, attended, held FROM subject_attendance WHERE student_usn = $1`, usn)
	if isUndefinedTable(err) {
		return nil, student.ErrCapabilityUnavailable
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting subject attendance")
	}

	att := make(map[string]student.SubjectAttendance, len(rows))
	for _, row := range rows {
		att[row.Subject] = student.NewSubjectAttendance(row.Attended, row.Held)
	}
	return att, nil
}

func (repo *studentRepository) UpsertSubjectAttendance(ctx context.Context, usn, subject string, attended, held int) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO subject_attendance (student_usn, subject, attended, held) VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_usn, subject) DO UPDATE
		SET attended = EXCLUDED.attended, held = EXCLUDED.held, updated_at = now() AT TIME ZONE 'utc'`,
		usn, subject, attended, held,
	)
	switch {
	case isUndefinedTable(err):
		return student.ErrCapabilityUnavailable
	case isForeignKeyViolation(err):
		return student.ErrNotFound
	}
	return errors.Wrap(err, "upserting subject attendance")
}

func (repo *studentRepository) FetchMonthlyAttendance(ctx context.Context, usn string) ([]student.MonthlyAttendance, error) {
	monthly := make([]student.MonthlyAttendance, 0)
	err := repo.db.SelectContext(ctx, &monthly,
		`SELECT month, percentage FROM monthly_attendance WHERE student_usn = $1 ORDER BY month`, usn)
	return monthly, errors.Wrap(err, "selecting monthly attendance")
}

func (repo *studentRepository) UpsertMonthlyAttendance(ctx context.Context, usn, month string, percentage int) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO monthly_attendance (student_usn, month, percentage) VALUES ($1, $2, $3)
		ON CONFLICT (student_usn, month) DO UPDATE SET percentage = EXCLUDED.percentage`,
		usn, month, percentage,
	)
	if isForeignKeyViolation(err) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, "upserting monthly attendance")
}

func (repo *studentRepository) FetchMentorNote(ctx context.Context, usn string) (*student.MentorNote, error) {
	var note student.MentorNote
	err := repo.db.GetContext(ctx, &note,
		`SELECT status, note, updated_at FROM mentor_notes WHERE student_usn = $1`, usn)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting mentor note")
	}
	note.UpdatedAt = note.UpdatedAt.UTC()
	return &note, nil
}

func (repo *studentRepository) UpsertMentorNote(ctx context.Context, usn string, note student.MentorNote) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO mentor_notes (student_usn, status, note, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_usn) DO UPDATE
		SET status = EXCLUDED.status, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at`,
		usn, string(note.Status), note.Note, note.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, "upserting mentor note")
}
