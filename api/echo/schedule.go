package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
)

type scheduleApi struct {
	svc *schedule.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service) {
	api := scheduleApi{svc: svc}

	sg := g.Group("/schedule-requests", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, parentMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.POST("/:id/approve", api.approve, teacherMiddleware())
	sg.POST("/:id/reject", api.reject, teacherMiddleware())
}

func (api *scheduleApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var requests []schedule.ChangeRequest
	if claims.IsTeacher {
		requests, err = api.svc.ForTeacher(ctx.Request().Context(), claims.Subject)
	} else {
		requests, err = api.svc.ForParent(ctx.Request().Context(), claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "fetching schedule change requests")
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *scheduleApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data schedule.NewChangeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChangeRequest")
	}
	data.ParentID = claims.Subject

	req, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule change request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	req, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == schedule.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting schedule change request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *scheduleApi) approve(ctx echo.Context) error {
	req, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case schedule.ErrNotFound:
			return errHttpNotFound
		case schedule.ErrNotPending:
			return errHttpConflict
		}
		return errors.Wrap(err, "approving schedule change request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *scheduleApi) reject(ctx echo.Context) error {
	var data RejectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RejectRequest")
	}

	req, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"), data.Reason)
	if err != nil {
		switch errors.Cause(err) {
		case schedule.ErrNotFound:
			return errHttpNotFound
		case schedule.ErrNotPending:
			return errHttpConflict
		}
		return errors.Wrap(err, "rejecting schedule change request")
	}
	return ctx.JSON(http.StatusOK, req)
}
