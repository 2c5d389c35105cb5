package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

type lessonNoteApi struct {
	svc     *lessonnote.Service
	userSvc *user.Service
}

func registerLessonNoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *lessonnote.Service, userSvc *user.Service) {
	api := lessonNoteApi{svc: svc, userSvc: userSvc}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.query, teacherMiddleware())
	pg.POST("", api.create, teacherMiddleware())
	pg.GET("/public", api.public, parentMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.PATCH("/:id", api.update, teacherMiddleware())
	pg.DELETE("/:id", api.destroy, teacherMiddleware())
}

func (api *lessonNoteApi) query(ctx echo.Context) error {
	if studentID := ctx.QueryParam("studentId"); studentID != "" {
		notes, err := api.svc.ForStudent(ctx.Request().Context(), studentID)
		if err != nil {
			return errors.Wrap(err, "fetching student lesson notes")
		}
		return ctx.JSON(http.StatusOK, notes)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	notes, err := api.svc.Fetch(ctx.Request().Context(), claims.Subject, force)
	if err != nil {
		return errors.Wrap(err, "fetching lesson notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}

// public serves the parent-visible notes of the caller's selected child, or
// of an explicit studentId when one is given.
func (api *lessonNoteApi) public(ctx echo.Context) error {
	studentID := ctx.QueryParam("studentId")
	if studentID == "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		studentID, err = api.userSvc.SelectedChild(ctx.Request().Context(), claims.Subject)
		if err != nil {
			return errors.Wrap(err, "resolving selected child")
		}
		if studentID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no child selected")
		}
	}

	notes, err := api.svc.PublicForStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "fetching public lesson notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *lessonNoteApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data lessonnote.NewNote
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	data.TeacherID = claims.Subject

	note, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson note")
	}
	return ctx.JSON(http.StatusCreated, note)
}

func (api *lessonNoteApi) retrieve(ctx echo.Context) error {
	note, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == lessonnote.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting lesson note")
	}
	return ctx.JSON(http.StatusOK, note)
}

func (api *lessonNoteApi) update(ctx echo.Context) error {
	var data lessonnote.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}

	note, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == lessonnote.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating lesson note")
	}
	return ctx.JSON(http.StatusOK, note)
}

func (api *lessonNoteApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == lessonnote.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting lesson note")
	}
	return ctx.NoContent(http.StatusNoContent)
}
