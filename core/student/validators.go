package student

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roshna21/DevOps-project/core"
)

const (
	MaxMark    = 40
	MaxPercent = 100
)

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	USN      string `json:"usn" validate:"required,usn"`
	Name     string `json:"name" validate:"required"`
	Course   string `json:"course" validate:"required"`
	Semester int    `json:"semester" validate:"min=1,max=8"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.USN = CleanUSN(ns.USN)
	ns.Name = core.CleanString(ns.Name)
	ns.Course = core.CleanString(ns.Course)
	if ns.Semester == 0 {
		ns.Semester = 1
	}
	return validate.Struct(ns)
}

// MarkUpdate sets one internal score of a subject.
type MarkUpdate struct {
	Subject  string `json:"subject" validate:"required"`
	Internal int    `json:"internal" validate:"min=1,max=3"`
	Marks    int    `json:"marks"`
}

// Validate cleans the update; out-of-range marks are clamped into [0, MaxMark].
func (mu *MarkUpdate) Validate(validate *validator.Validate) error {
	mu.Subject = core.CleanString(mu.Subject)
	mu.Marks = clamp(mu.Marks, 0, MaxMark)
	return validate.Struct(mu)
}

// AttendanceUpdate sets the class counts of a subject. Negative counts are clamped to 0.
type AttendanceUpdate struct {
	Subject  string `json:"subject" validate:"required"`
	Attended int    `json:"attended"`
	Held     int    `json:"held"`
}

func (au *AttendanceUpdate) Validate(validate *validator.Validate) error {
	au.Subject = core.CleanString(au.Subject)
	au.Attended = clamp(au.Attended, 0, -1)
	au.Held = clamp(au.Held, 0, -1)
	return validate.Struct(au)
}

// MonthlyUpdate sets the coarse attendance percentage of a month.
type MonthlyUpdate struct {
	Month      string `json:"month" validate:"required,month"`
	Percentage int    `json:"percentage"`
}

func (mu *MonthlyUpdate) Validate(validate *validator.Validate) error {
	mu.Month = core.CleanString(mu.Month)
	mu.Percentage = clamp(mu.Percentage, 0, MaxPercent)
	return validate.Struct(mu)
}

type MentorNoteUpdate struct {
	Status MentorStatus `json:"status" validate:"required"`
	Note   string       `json:"note"`
}

func (nu *MentorNoteUpdate) Validate(validate *validator.Validate) error {
	nu.Status = MentorStatus(core.CleanString(string(nu.Status)))
	nu.Note = core.CleanString(nu.Note)
	if err := validate.Struct(nu); err != nil {
		return err
	}
	if !nu.Status.IsValid() {
		return core.NewFieldError("status", "must be one of: No remarks, Needs improvement, Excellent, Custom")
	}
	return nil
}

// CleanUSN normalizes a university seat number.
func CleanUSN(usn string) string {
	return strings.ToUpper(core.CleanString(usn))
}

// clamp limits v to [lo, hi]; a negative hi means no upper bound.
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= 0 && v > hi {
		return hi
	}
	return v
}
