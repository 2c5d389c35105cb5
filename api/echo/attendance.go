package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.query)
	ag.POST("", api.mark, teacherMiddleware())
	ag.PATCH("/:id", api.correct, teacherMiddleware())
	ag.DELETE("/:id", api.destroy, teacherMiddleware())
	ag.GET("/stats/:studentId", api.stats)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	if studentID := ctx.QueryParam("studentId"); studentID != "" {
		records, err := api.svc.ForStudent(ctx.Request().Context(), studentID)
		if err != nil {
			return errors.Wrap(err, "fetching student attendance")
		}
		return ctx.JSON(http.StatusOK, records)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	fromParam, toParam := ctx.QueryParam("from"), ctx.QueryParam("to")
	if fromParam != "" || toParam != "" {
		from, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from param")
		}
		to, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to param")
		}
		records, err := api.svc.ForDateRange(ctx.Request().Context(), claims.Subject, from, to)
		if err != nil {
			return errors.Wrap(err, "fetching attendance range")
		}
		return ctx.JSON(http.StatusOK, records)
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	records, err := api.svc.Fetch(ctx.Request().Context(), claims.Subject, force)
	if err != nil {
		return errors.Wrap(err, "fetching attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data attendance.NewRecord
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	data.TeacherID = claims.Subject

	rec, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) correct(ctx echo.Context) error {
	var data attendance.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}

	rec, err := api.svc.Correct(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "correcting attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	stats, err := api.svc.StatsForStudent(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "computing attendance stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
