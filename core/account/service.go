package account

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/student"
)

var (
	// errors
	ErrNotFound             = errors.New("account not found")
	ErrMobileExists         = errors.New("an account with this mobile number already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotApproved          = errors.New("professor account awaiting approval")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateParent(ctx context.Context, p Parent) (Parent, error)
		UpdateParent(ctx context.Context, p Parent) (Parent, error)
		GetParentByID(ctx context.Context, id string) (Parent, error)
		GetParentByMobile(ctx context.Context, mobile string) (Parent, error)
		ListParentsByStudent(ctx context.Context, usn string) ([]Parent, error)

		CreateProfessor(ctx context.Context, p Professor) (Professor, error)
		UpdateProfessor(ctx context.Context, p Professor) (Professor, error)
		GetProfessorByID(ctx context.Context, id string) (Professor, error)
		GetProfessorByCode(ctx context.Context, code string) (Professor, error)
		GetProfessorByMobile(ctx context.Context, mobile string) (Professor, error)
		CountProfessors(ctx context.Context) (int, error)
	}

	// StudentService is the part of student.Service accounts depend on.
	StudentService interface {
		Ensure(ctx context.Context, usn, name string) (student.Student, error)
		Query(ctx context.Context, filter student.QueryFilter) ([]student.Student, error)
		GetMergedView(ctx context.Context, usn string) (student.View, error)
	}

	Service struct {
		conf     *core.Config
		repo     Repository
		students StudentService
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	conf *core.Config,
	repo Repository,
	students StudentService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		conf:     conf,
		repo:     repo,
		students: students,
		validate: validate,
		logger:   logger,
	}
}

// VerifyOTP signs a parent or professor in. Codes are checked against the configured debug OTP.
func (svc *Service) VerifyOTP(ctx context.Context, data OTPVerification) (Identity, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Identity{}, err
	}
	if svc.conf.Auth.DebugOTP == "" ||
		subtle.ConstantTimeCompare([]byte(data.Code), []byte(svc.conf.Auth.DebugOTP)) != 1 {
		return Identity{}, ErrAuthenticationFailed
	}

	switch data.Role {
	case RoleParent:
		p, err := svc.repo.GetParentByMobile(ctx, core.DigitsOnly(data.Mobile))
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Identity{}, ErrAuthenticationFailed
			}
			return Identity{}, errors.Wrap(err, "finding parent by mobile")
		}
		return p.Identity(), nil
	default:
		var p Professor
		var err error
		if data.ProfessorCode != "" {
			p, err = svc.repo.GetProfessorByCode(ctx, data.ProfessorCode)
		} else {
			p, err = svc.repo.GetProfessorByMobile(ctx, core.DigitsOnly(data.Mobile))
		}
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Identity{}, ErrAuthenticationFailed
			}
			return Identity{}, errors.Wrap(err, "finding professor")
		}
		if !p.Approved {
			return Identity{}, ErrNotApproved
		}
		return p.Identity(), nil
	}
}

// LoginAdmin checks the admin credentials against the configured bcrypt hash.
func (svc *Service) LoginAdmin(ctx context.Context, data AdminLogin) (Identity, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Identity{}, err
	}
	if svc.conf.Auth.AdminPasswordHash == "" || data.Username != core.CleanString(svc.conf.Auth.AdminUsername, true) {
		return Identity{}, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(svc.conf.Auth.AdminPasswordHash), []byte(data.Password)); err != nil {
		return Identity{}, ErrAuthenticationFailed
	}
	return Identity{ID: data.Username, Name: "Administrator", Role: RoleAdmin}, nil
}

// Identify reloads the identity of a signed-in account.
func (svc *Service) Identify(ctx context.Context, role Role, id string) (Identity, error) {
	switch role {
	case RoleParent:
		p, err := svc.repo.GetParentByID(ctx, id)
		if err != nil {
			return Identity{}, errors.Wrap(err, "finding parent")
		}
		return p.Identity(), nil
	case RoleProfessor:
		p, err := svc.repo.GetProfessorByID(ctx, id)
		if err != nil {
			return Identity{}, errors.Wrap(err, "finding professor")
		}
		return p.Identity(), nil
	case RoleAdmin:
		if id != core.CleanString(svc.conf.Auth.AdminUsername, true) {
			return Identity{}, ErrNotFound
		}
		return Identity{ID: id, Name: "Administrator", Role: RoleAdmin}, nil
	}
	return Identity{}, ErrNotFound
}

// MapParent links a parent mobile to a student, creating the student when absent.
// A student has a single mapped parent; remapping replaces its contact details.
func (svc *Service) MapParent(ctx context.Context, data ParentMapping) (Parent, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Parent{}, err
	}
	mobile := core.DigitsOnly(data.Mobile)

	if other, err := svc.repo.GetParentByMobile(ctx, mobile); err == nil && other.StudentUSN != data.USN {
		return Parent{}, core.NewValidationError(ErrMobileExists, core.FieldError{Field: "mobile", Error: ErrMobileExists.Error()})
	} else if err != nil && errors.Cause(err) != ErrNotFound {
		return Parent{}, errors.Wrap(err, "finding parent by mobile")
	}

	s, err := svc.students.Ensure(ctx, data.USN, data.StudentName)
	if err != nil {
		return Parent{}, errors.Wrap(err, "ensuring student")
	}

	name := data.ParentName
	if name == "" {
		name = "Parent of " + s.Name
	}

	parents, err := svc.repo.ListParentsByStudent(ctx, s.USN)
	if err != nil {
		return Parent{}, errors.Wrap(err, "listing parents")
	}
	if len(parents) > 0 {
		p := parents[0]
		p.Name = name
		p.Mobile = mobile
		p.Email = data.Email
		p, err = svc.repo.UpdateParent(ctx, p)
		return p, errors.Wrap(err, "updating parent")
	}

	p, err := svc.repo.CreateParent(ctx, Parent{
		ID:         uuid.New().String(),
		Name:       name,
		Mobile:     mobile,
		Email:      data.Email,
		StudentUSN: s.USN,
		CreatedAt:  NowFunc().UTC(),
	})
	return p, errors.Wrap(err, "creating parent")
}

// RegisterProfessor creates an approved professor with mentees from its department.
func (svc *Service) RegisterProfessor(ctx context.Context, data NewProfessor) (Professor, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Professor{}, err
	}
	mobile := core.DigitsOnly(data.Mobile)
	if _, err := svc.repo.GetProfessorByMobile(ctx, mobile); err == nil {
		return Professor{}, core.NewValidationError(ErrMobileExists, core.FieldError{Field: "mobile", Error: ErrMobileExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return Professor{}, errors.Wrap(err, "finding professor by mobile")
	}

	count, err := svc.repo.CountProfessors(ctx)
	if err != nil {
		return Professor{}, errors.Wrap(err, "counting professors")
	}
	course, _ := student.FindCourse(data.Department)

	mentees, err := svc.departmentPool(ctx, course.Name)
	if err != nil {
		return Professor{}, err
	}

	p, err := svc.repo.CreateProfessor(ctx, Professor{
		ID:         uuid.New().String(),
		Code:       ProfessorCode(course.Code, count+1),
		Name:       data.Name,
		Mobile:     mobile,
		Department: course.Name,
		Approved:   true,
		MenteeUSNs: mentees,
		CreatedAt:  NowFunc().UTC(),
	})
	return p, errors.Wrap(err, "creating professor")
}

// ProfessorCode formats the public code of the nth professor of a department, e.g. CITCS001.
func ProfessorCode(deptCode string, n int) string {
	return fmt.Sprintf("CIT%s%03d", deptCode, n)
}

func (svc *Service) departmentPool(ctx context.Context, department string) ([]string, error) {
	students, err := svc.students.Query(ctx, student.QueryFilter{Course: department})
	if err != nil {
		return nil, errors.Wrap(err, "querying department students")
	}
	sort.Slice(students, func(i, j int) bool { return students[i].USN < students[j].USN })
	if len(students) > MaxMentees {
		students = students[:MaxMentees]
	}
	usns := make([]string, 0, len(students))
	for _, s := range students {
		usns = append(usns, s.USN)
	}
	return usns, nil
}

// professorWithMentees loads a professor, assigning the first students of its department when it has no mentees.
func (svc *Service) professorWithMentees(ctx context.Context, professorID string) (Professor, error) {
	p, err := svc.repo.GetProfessorByID(ctx, professorID)
	if err != nil {
		return Professor{}, errors.Wrap(err, "finding professor")
	}
	if len(p.MenteeUSNs) > 0 {
		return p, nil
	}
	if p.MenteeUSNs, err = svc.departmentPool(ctx, p.Department); err != nil {
		return Professor{}, err
	}
	p, err = svc.repo.UpdateProfessor(ctx, p)
	return p, errors.Wrap(err, "assigning mentees")
}

// CanAccessStudent reports whether an account may read and edit the records of a student.
// Parents see their own child, professors their mentees and the admin everyone.
func (svc *Service) CanAccessStudent(ctx context.Context, role Role, id, usn string) (bool, error) {
	usn = student.CleanUSN(usn)
	switch role {
	case RoleAdmin:
		return true, nil
	case RoleParent:
		p, err := svc.repo.GetParentByID(ctx, id)
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrap(err, "finding parent")
		}
		return p.StudentUSN == usn, nil
	case RoleProfessor:
		p, err := svc.professorWithMentees(ctx, id)
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		for _, m := range p.MenteeUSNs {
			if m == usn {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListMentees returns a page of the professor's mentees with their overall attendance.
// A professor without mentees is assigned the first students of its department.
func (svc *Service) ListMentees(ctx context.Context, professorID string, filter MenteeFilter) (MenteePage, error) {
	filter.Clean()

	p, err := svc.professorWithMentees(ctx, professorID)
	if err != nil {
		return MenteePage{}, err
	}

	page := MenteePage{Items: []Mentee{}, Page: filter.Page, PageSize: filter.PageSize}
	if len(p.MenteeUSNs) == 0 {
		return page, nil
	}

	students, err := svc.students.Query(ctx, student.QueryFilter{
		USNs:     p.MenteeUSNs,
		Course:   filter.Department,
		Semester: filter.Semester,
		Search:   filter.Search,
	})
	if err != nil {
		return MenteePage{}, errors.Wrap(err, "querying mentees")
	}
	sort.Slice(students, func(i, j int) bool { return students[i].USN < students[j].USN })

	page.Total = len(students)
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(students) {
		return page, nil
	}
	end := start + filter.PageSize
	if end > len(students) {
		end = len(students)
	}

	for _, s := range students[start:end] {
		view, err := svc.students.GetMergedView(ctx, s.USN)
		if err != nil {
			return MenteePage{}, errors.Wrapf(err, "merging view of %s", s.USN)
		}
		page.Items = append(page.Items, Mentee{
			Student:           view.Student,
			OverallAttendance: view.OverallAttendance(),
			MentorNote:        view.MentorNote,
		})
	}
	return page, nil
}

// ParentsOfStudent lists the parents to notify about a student.
func (svc *Service) ParentsOfStudent(ctx context.Context, usn string) ([]Parent, error) {
	return svc.repo.ListParentsByStudent(ctx, student.CleanUSN(usn))
}
