package student

import (
	"math"
	"time"
)

type Student struct {
	USN       string    `json:"usn" db:"usn"`
	Name      string    `json:"name" db:"name"`
	Course    string    `json:"course" db:"course"`
	Semester  int       `json:"semester" db:"semester"`
	Subjects  []string  `json:"subjects" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// SubjectMark holds the internal assessment scores of one subject, each in [0, MaxMark].
type SubjectMark struct {
	Internal1 *int `json:"internal1"`
	Internal2 *int `json:"internal2"`
	Internal3 *int `json:"internal3"`
}

// Internal returns the score of internal n (1..3).
func (m SubjectMark) Internal(n int) *int {
	switch n {
	case 1:
		return m.Internal1
	case 2:
		return m.Internal2
	case 3:
		return m.Internal3
	}
	return nil
}

// Scores returns the present internal scores, in order.
func (m SubjectMark) Scores() []int {
	scores := make([]int, 0, 3)
	for _, s := range []*int{m.Internal1, m.Internal2, m.Internal3} {
		if s != nil {
			scores = append(scores, *s)
		}
	}
	return scores
}

type SubjectAttendance struct {
	Attended   int `json:"attended"`
	Held       int `json:"held"`
	Percentage int `json:"percentage"`
}

func NewSubjectAttendance(attended, held int) SubjectAttendance {
	return SubjectAttendance{Attended: attended, Held: held, Percentage: Percent(attended, held)}
}

type MonthlyAttendance struct {
	Month      string `json:"month" db:"month"` // YYYY-MM
	Percentage int    `json:"percentage" db:"percentage"`
}

type MentorStatus string

const (
	NoRemarks        MentorStatus = "No remarks"
	NeedsImprovement MentorStatus = "Needs improvement"
	Excellent        MentorStatus = "Excellent"
	Custom           MentorStatus = "Custom"
)

var MentorStatuses = []MentorStatus{NoRemarks, NeedsImprovement, Excellent, Custom}

func (s MentorStatus) IsValid() bool {
	for _, st := range MentorStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type MentorNote struct {
	Status    MentorStatus `json:"status" db:"status"`
	Note      string       `json:"note" db:"note"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// DefaultMentorNote is shown when a student has no note yet.
func DefaultMentorNote() MentorNote {
	return MentorNote{Status: NoRemarks}
}

// View is the reconciled record of a student: store truth, then pending overlay edits, then placeholders.
type View struct {
	Student           Student                      `json:"student"`
	Subjects          []string                     `json:"subjects"`
	Marks             map[string]SubjectMark       `json:"marks"`
	SubjectAttendance map[string]SubjectAttendance `json:"subject_attendance"`
	MonthlyAttendance []MonthlyAttendance          `json:"monthly_attendance"`
	MentorNote        MentorNote                   `json:"mentor_note"`

	// SubjectAttendanceAvailable is false when the store has no subject-level attendance.
	SubjectAttendanceAvailable bool `json:"subject_attendance_available"`
}

// LatestMonthly returns the most recent monthly attendance record.
func (v View) LatestMonthly() (MonthlyAttendance, bool) {
	if len(v.MonthlyAttendance) == 0 {
		return MonthlyAttendance{}, false
	}
	latest := v.MonthlyAttendance[0]
	for _, m := range v.MonthlyAttendance[1:] {
		if m.Month >= latest.Month {
			latest = m
		}
	}
	return latest, true
}

// OverallAttendance is the attended/held ratio over every subject,
// or the latest monthly percentage when no class was held.
func (v View) OverallAttendance() int {
	var attended, held int
	for _, a := range v.SubjectAttendance {
		attended += a.Attended
		held += a.Held
	}
	if held > 0 {
		return Percent(attended, held)
	}
	if latest, ok := v.LatestMonthly(); ok {
		return latest.Percentage
	}
	return 0
}

// Percent returns round(part/total*100), or 0 when total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// QueryFilter applies AND operation on its set fields.
// Search does a case-insensitive match on Student.Name or Student.USN.
type QueryFilter struct {
	USNs     []string `query:"-"`
	Course   string   `query:"dept"`
	Semester int      `query:"semester"`
	Search   string   `query:"search"`
}
