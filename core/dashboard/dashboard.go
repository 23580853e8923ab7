// Package dashboard derives the summaries shown on the parent and professor dashboards.
package dashboard

import (
	"fmt"
	"math"

	"github.com/roshna21/DevOps-project/core/student"
)

const (
	// AllSubjects selects every subject in WeeklyBreakdown.
	AllSubjects = "All"

	Weeks = 4

	// fallbackHeld is the class count assumed for a subject without attendance records.
	fallbackHeld = 16
	// fallbackPercentage is used when there is no monthly record either.
	fallbackPercentage = 80
)

type Week struct {
	Week       string `json:"week"`
	Attended   int    `json:"attended"`
	Held       int    `json:"held"`
	Percentage int    `json:"percentage"`
}

type Totals struct {
	Attended int `json:"attended"`
	Held     int `json:"held"`
}

type Weekly struct {
	Subject           string `json:"subject"`
	Weeks             []Week `json:"weeks"`
	Totals            Totals `json:"totals"`
	OverallPercentage int    `json:"overall_percentage"`
}

// SubjectAverage is the rounded mean of the present internal scores, or nil when there is none.
func SubjectAverage(m student.SubjectMark) *int {
	scores := m.Scores()
	if len(scores) == 0 {
		return nil
	}
	var sum int
	for _, s := range scores {
		sum += s
	}
	avg := int(math.Round(float64(sum) / float64(len(scores))))
	return &avg
}

// WeeklyBreakdown spreads the attendance totals of a subject (or of every subject) over four weeks.
func WeeklyBreakdown(v student.View, filter string) Weekly {
	if filter == "" {
		filter = AllSubjects
	}

	var totals Totals
	if filter == AllSubjects {
		for _, a := range v.SubjectAttendance {
			totals.Attended += a.Attended
			totals.Held += a.Held
		}
	} else if a, ok := v.SubjectAttendance[filter]; ok {
		totals = Totals{Attended: a.Attended, Held: a.Held}
	} else {
		pct := fallbackPercentage
		if latest, ok := v.LatestMonthly(); ok {
			pct = latest.Percentage
		}
		totals = Totals{
			Attended: int(math.Round(float64(pct) / 100 * fallbackHeld)),
			Held:     fallbackHeld,
		}
	}

	overall := 0
	if totals.Held > 0 {
		overall = student.Percent(totals.Attended, totals.Held)
	} else if latest, ok := v.LatestMonthly(); ok {
		overall = latest.Percentage
	}

	return Weekly{
		Subject:           filter,
		Weeks:             SplitWeeks(totals.Attended, totals.Held),
		Totals:            totals,
		OverallPercentage: overall,
	}
}

// SplitWeeks distributes attended and held over Weeks buckets.
// The remainder goes to the first weeks and no week has more attended than held classes.
func SplitWeeks(attended, held int) []Week {
	if held < 0 {
		held = 0
	}
	if attended < 0 {
		attended = 0
	}
	baseHeld, remHeld := held/Weeks, held%Weeks
	baseAtt, remAtt := attended/Weeks, attended%Weeks

	weeks := make([]Week, Weeks)
	for i := range weeks {
		h := baseHeld
		if i < remHeld {
			h++
		}
		a := baseAtt
		if i < remAtt {
			a++
		}
		if a > h {
			a = h
		}
		weeks[i] = Week{
			Week:       fmt.Sprintf("Wk %d", i+1),
			Attended:   a,
			Held:       h,
			Percentage: student.Percent(a, h),
		}
	}
	return weeks
}

type InternalsRow struct {
	Subject   string `json:"subject"`
	Internal1 *int   `json:"internal1"`
	Internal2 *int   `json:"internal2"`
	Internal3 *int   `json:"internal3"`
	Average   *int   `json:"average"`
}

type SubjectRow struct {
	Subject string `json:"subject"`
	student.SubjectAttendance
}

// Summary is everything the parent dashboard renders for one student.
type Summary struct {
	Student           student.Student             `json:"student"`
	Internals         []InternalsRow              `json:"internals"`
	SubjectAttendance []SubjectRow                `json:"subject_attendance"`
	CurrentMonth      *student.MonthlyAttendance  `json:"current_month"`
	Monthly           []student.MonthlyAttendance `json:"monthly_attendance"`
	Weekly            Weekly                      `json:"weekly"`
	OverallAttendance int                         `json:"overall_attendance"`
	MentorNote        student.MentorNote          `json:"mentor_note"`

	SubjectAttendanceAvailable bool `json:"subject_attendance_available"`
}

// Summarize builds the dashboard of a merged view; filter selects the weekly breakdown subject.
func Summarize(v student.View, filter string) Summary {
	s := Summary{
		Student:                    v.Student,
		Internals:                  make([]InternalsRow, 0, len(v.Subjects)),
		SubjectAttendance:          make([]SubjectRow, 0, len(v.Subjects)),
		Monthly:                    v.MonthlyAttendance,
		Weekly:                     WeeklyBreakdown(v, filter),
		OverallAttendance:          v.OverallAttendance(),
		MentorNote:                 v.MentorNote,
		SubjectAttendanceAvailable: v.SubjectAttendanceAvailable,
	}
	for _, sub := range v.Subjects {
		if m, ok := v.Marks[sub]; ok {
			s.Internals = append(s.Internals, InternalsRow{
				Subject:   sub,
				Internal1: m.Internal1,
				Internal2: m.Internal2,
				Internal3: m.Internal3,
				Average:   SubjectAverage(m),
			})
		}
		if a, ok := v.SubjectAttendance[sub]; ok {
			s.SubjectAttendance = append(s.SubjectAttendance, SubjectRow{Subject: sub, SubjectAttendance: a})
		}
	}
	if latest, ok := v.LatestMonthly(); ok {
		s.CurrentMonth = &latest
	}
	if s.Monthly == nil {
		s.Monthly = []student.MonthlyAttendance{}
	}
	return s
}
