package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
)

type galleryApi struct {
	svc *gallery.Service
}

func registerGalleryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *gallery.Service) {
	api := galleryApi{svc: svc}

	gg := g.Group("/gallery", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create, teacherMiddleware())
	gg.GET("/:id", api.retrieve)
	gg.PATCH("/:id", api.update, teacherMiddleware())
	gg.DELETE("/:id", api.destroy, teacherMiddleware())
}

func (api *galleryApi) query(ctx echo.Context) error {
	if studentID := ctx.QueryParam("studentId"); studentID != "" {
		photos, err := api.svc.ForStudent(ctx.Request().Context(), studentID)
		if err != nil {
			return errors.Wrap(err, "fetching student photos")
		}
		return ctx.JSON(http.StatusOK, photos)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	teacherID := claims.Subject
	if claims.IsParent {
		if teacherID = ctx.QueryParam("teacherId"); teacherID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "teacherId required")
		}
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	photos, err := api.svc.Fetch(ctx.Request().Context(), teacherID, force)
	if err != nil {
		return errors.Wrap(err, "fetching photos")
	}
	return ctx.JSON(http.StatusOK, photos)
}

func (api *galleryApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data gallery.NewPhoto
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPhoto")
	}
	data.TeacherID = claims.Subject

	photo, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding photo")
	}
	return ctx.JSON(http.StatusCreated, photo)
}

func (api *galleryApi) retrieve(ctx echo.Context) error {
	photo, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == gallery.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting photo")
	}
	return ctx.JSON(http.StatusOK, photo)
}

func (api *galleryApi) update(ctx echo.Context) error {
	var data gallery.UpdatePhoto
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePhoto")
	}

	photo, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == gallery.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating photo")
	}
	return ctx.JSON(http.StatusOK, photo)
}

func (api *galleryApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == gallery.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting photo")
	}
	return ctx.NoContent(http.StatusNoContent)
}
