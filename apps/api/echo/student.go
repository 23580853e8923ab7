package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/dashboard"
	"github.com/roshna21/DevOps-project/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, accounts *account.Service) {
	api := studentApi{svc: svc}

	g.GET("/dashboard/parent", api.parentDashboard, jwt, parentMiddleware(accounts))

	sg := g.Group("/students", jwt)
	sg.POST("", api.create, adminMiddleware())

	// detail endpoints
	dg := sg.Group("/:usn", studentAccessMiddleware(accounts))
	dg.GET("", api.retrieve)
	dg.GET("/weekly", api.weekly)

	// parents only read records
	editor := roleMiddleware(account.RoleProfessor, account.RoleAdmin)
	dg.PUT("/marks", api.updateMark, editor)
	dg.PUT("/attendance/subjects", api.updateSubjectAttendance, editor)
	dg.PUT("/attendance/monthly", api.updateMonthlyAttendance, editor)
	dg.PUT("/mentor-note", api.updateMentorNote, editor)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) detail(ctx echo.Context, code int) error {
	view, err := api.svc.GetMergedView(ctx.Request().Context(), contextUSN(ctx))
	if err != nil {
		return errors.Wrap(err, "merging student view")
	}
	return ctx.JSON(code, StudentDetail{View: view, OverallAttendance: view.OverallAttendance()})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	return api.detail(ctx, http.StatusOK)
}

func (api *studentApi) weekly(ctx echo.Context) error {
	view, err := api.svc.GetMergedView(ctx.Request().Context(), contextUSN(ctx))
	if err != nil {
		return errors.Wrap(err, "merging student view")
	}
	return ctx.JSON(http.StatusOK, dashboard.WeeklyBreakdown(view, ctx.QueryParam("subject")))
}

func (api *studentApi) parentDashboard(ctx echo.Context) error {
	view, err := api.svc.GetMergedView(ctx.Request().Context(), contextUSN(ctx))
	if err != nil {
		return errors.Wrap(err, "merging student view")
	}
	return ctx.JSON(http.StatusOK, dashboard.Summarize(view, ctx.QueryParam("subject")))
}

func (api *studentApi) updateMark(ctx echo.Context) error {
	var data student.MarkUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkUpdate")
	}
	if err := api.svc.UpdateMark(ctx.Request().Context(), contextUSN(ctx), data); err != nil {
		return errors.Wrap(err, "updating mark")
	}
	return api.detail(ctx, http.StatusOK)
}

func (api *studentApi) updateSubjectAttendance(ctx echo.Context) error {
	var data student.AttendanceUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceUpdate")
	}
	if err := api.svc.UpdateSubjectAttendance(ctx.Request().Context(), contextUSN(ctx), data); err != nil {
		return errors.Wrap(err, "updating subject attendance")
	}
	return api.detail(ctx, http.StatusOK)
}

func (api *studentApi) updateMonthlyAttendance(ctx echo.Context) error {
	var data student.MonthlyUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MonthlyUpdate")
	}
	if err := api.svc.UpdateMonthlyAttendance(ctx.Request().Context(), contextUSN(ctx), data); err != nil {
		return errors.Wrap(err, "updating monthly attendance")
	}
	return api.detail(ctx, http.StatusOK)
}

func (api *studentApi) updateMentorNote(ctx echo.Context) error {
	var data student.MentorNoteUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentorNoteUpdate")
	}
	if err := api.svc.UpdateMentorNote(ctx.Request().Context(), contextUSN(ctx), data); err != nil {
		return errors.Wrap(err, "updating mentor note")
	}
	return api.detail(ctx, http.StatusOK)
}

// StudentDetail is a merged view with its overall attendance.
type StudentDetail struct {
	student.View
	OverallAttendance int `json:"overall_attendance"`
}
