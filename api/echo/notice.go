package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
)

type noticeApi struct {
	svc *notice.Service
}

func registerNoticeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notice.Service) {
	api := noticeApi{svc: svc}

	ng := g.Group("/notices", jwt)
	ng.GET("", api.query)
	ng.POST("", api.create, teacherMiddleware())
	ng.GET("/unconfirmed", api.unconfirmed, parentMiddleware())
	ng.GET("/:id", api.retrieve)
	ng.PATCH("/:id", api.update, teacherMiddleware())
	ng.DELETE("/:id", api.destroy, teacherMiddleware())
	ng.POST("/:id/confirm", api.confirm, parentMiddleware())
}

// teacherIDFor resolves the teacher whose notices the caller should see:
// teachers see their own board, parents name one via the teacherId param.
func (api *noticeApi) teacherIDFor(ctx echo.Context, claims Claims) (string, error) {
	if claims.IsTeacher {
		return claims.Subject, nil
	}
	if id := ctx.QueryParam("teacherId"); id != "" {
		return id, nil
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, "teacherId param required")
}

func (api *noticeApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	teacherID, err := api.teacherIDFor(ctx, claims)
	if err != nil {
		return err
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	notices, err := api.svc.Fetch(ctx.Request().Context(), teacherID, force)
	if err != nil {
		return errors.Wrap(err, "fetching notices")
	}
	return ctx.JSON(http.StatusOK, notices)
}

func (api *noticeApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data notice.NewNotice
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotice")
	}
	data.TeacherID = claims.Subject

	ntc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notice")
	}
	return ctx.JSON(http.StatusCreated, ntc)
}

func (api *noticeApi) retrieve(ctx echo.Context) error {
	ntc, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting notice")
	}
	return ctx.JSON(http.StatusOK, ntc)
}

func (api *noticeApi) update(ctx echo.Context) error {
	var data notice.UpdateNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNotice")
	}

	ntc, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating notice")
	}
	return ctx.JSON(http.StatusOK, ntc)
}

func (api *noticeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting notice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noticeApi) confirm(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	ntc, err := api.svc.Confirm(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "confirming notice")
	}
	return ctx.JSON(http.StatusOK, ntc)
}

func (api *noticeApi) unconfirmed(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	teacherID, err := api.teacherIDFor(ctx, claims)
	if err != nil {
		return err
	}

	// warm the cache so the unconfirmed view reflects the backend
	if _, err = api.svc.Fetch(ctx.Request().Context(), teacherID, false); err != nil {
		return errors.Wrap(err, "fetching notices")
	}
	return ctx.JSON(http.StatusOK, api.svc.UnconfirmedFor(teacherID, claims.Subject))
}
