package account

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/student"
)

type Role string

// Roles
const (
	RoleParent    Role = "parent"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleParent || r == RoleProfessor || r == RoleAdmin
}

// MaxMentees is the number of students auto-assigned to a professor without mentees.
const MaxMentees = 10

type Parent struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Mobile     string    `json:"mobile" db:"mobile"` // digits only
	Email      string    `json:"email" db:"email"`
	StudentUSN string    `json:"student_usn" db:"student_usn"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

type Professor struct {
	ID         string    `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"` // e.g. CITCS001
	Name       string    `json:"name" db:"name"`
	Mobile     string    `json:"mobile" db:"mobile"` // digits only
	Department string    `json:"department" db:"department"`
	Approved   bool      `json:"approved" db:"approved"`
	MenteeUSNs []string  `json:"mentee_usns" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// Identity is the verified caller returned by a successful sign-in.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	StudentUSN string `json:"student_usn,omitempty"`
	Department string `json:"department,omitempty"`
}

func (p Parent) Identity() Identity {
	return Identity{ID: p.ID, Name: p.Name, Role: RoleParent, StudentUSN: p.StudentUSN}
}

func (p Professor) Identity() Identity {
	return Identity{ID: p.ID, Name: p.Name, Role: RoleProfessor, Department: p.Department}
}

// OTPVerification is a one-time-password sign-in attempt.
// Professors may sign in with their code instead of their mobile number.
type OTPVerification struct {
	Role          Role   `json:"role" validate:"required"`
	Mobile        string `json:"mobile" validate:"omitempty,mobile"`
	ProfessorCode string `json:"professor_code"`
	Code          string `json:"otp" validate:"required,len=6,numeric"`
}

func (ov *OTPVerification) Validate(validate *validator.Validate) error {
	ov.Role = Role(core.CleanString(string(ov.Role), true /* lower */))
	ov.Mobile = core.CleanString(ov.Mobile)
	ov.ProfessorCode = core.CleanString(ov.ProfessorCode)
	ov.Code = core.CleanString(ov.Code)
	if err := validate.Struct(ov); err != nil {
		return err
	}
	if ov.Role != RoleParent && ov.Role != RoleProfessor {
		return core.NewFieldError("role", "must be one of: parent, professor")
	}
	if ov.Mobile == "" && (ov.Role == RoleParent || ov.ProfessorCode == "") {
		return core.NewFieldError("mobile", "this field is required")
	}
	return nil
}

type AdminLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (al *AdminLogin) Validate(validate *validator.Validate) error {
	al.Username = core.CleanString(al.Username, true /* lower */)
	return validate.Struct(al)
}

// ParentMapping links a parent mobile number to a student.
type ParentMapping struct {
	USN         string `json:"usn" validate:"required,usn"`
	Mobile      string `json:"mobile" validate:"required,mobile"`
	ParentName  string `json:"parent_name"`
	StudentName string `json:"student_name"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func (pm *ParentMapping) Validate(validate *validator.Validate) error {
	pm.USN = student.CleanUSN(pm.USN)
	pm.Mobile = core.CleanString(pm.Mobile)
	pm.ParentName = core.CleanString(pm.ParentName)
	pm.StudentName = core.CleanString(pm.StudentName)
	pm.Email = core.CleanString(pm.Email, true /* lower */)
	return validate.Struct(pm)
}

type NewProfessor struct {
	Name       string `json:"name" validate:"required"`
	Mobile     string `json:"mobile" validate:"required,mobile"`
	Department string `json:"department" validate:"required"`
}

func (np *NewProfessor) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Mobile = core.CleanString(np.Mobile)
	np.Department = core.CleanString(np.Department)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if _, ok := student.FindCourse(np.Department); !ok {
		return core.NewFieldError("department", "unknown department")
	}
	return nil
}

// MenteeFilter narrows a professor's mentee list. Department filters on the student course.
type MenteeFilter struct {
	Department string `query:"dept"`
	Semester   int    `query:"semester"`
	Search     string `query:"search"`
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
}

const DefaultPageSize = 8

func (mf *MenteeFilter) Clean() {
	mf.Department = core.CleanString(mf.Department)
	mf.Search = core.CleanString(mf.Search)
	if mf.Page < 1 {
		mf.Page = 1
	}
	if mf.PageSize < 1 || mf.PageSize > 100 {
		mf.PageSize = DefaultPageSize
	}
}

type Mentee struct {
	Student           student.Student    `json:"student"`
	OverallAttendance int                `json:"overall_attendance"`
	MentorNote        student.MentorNote `json:"mentor_note"`
}

type MenteePage struct {
	Items    []Mentee `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}
