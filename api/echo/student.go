package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/storage"
)

type studentApi struct {
	svc   *student.Service
	repos *storage.Repositories
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, repos *storage.Repositories) {
	api := studentApi{svc: svc, repos: repos}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, teacherMiddleware())
	sg.POST("", api.create, teacherMiddleware())
	sg.GET("/alerts", api.ticketAlerts, teacherMiddleware())
	sg.GET("/stream", api.stream, teacherMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PATCH("/:id", api.update, teacherMiddleware())
	sg.DELETE("/:id", api.destroy, teacherMiddleware())
	sg.PUT("/:id/schedule", api.setSchedule, teacherMiddleware())
	sg.PUT("/:id/unpaid", api.setUnpaid, teacherMiddleware())
}

func (api *studentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	category := ctx.QueryParam("category")
	search := ctx.QueryParam("search")
	unpaidParam := ctx.QueryParam("unpaid")

	if category != "" || search != "" || unpaidParam != "" {
		f := student.QueryFilter{TeacherID: claims.Subject, Category: category, Search: search}
		if unpaidParam != "" {
			unpaid, perr := strconv.ParseBool(unpaidParam)
			if perr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid unpaid param")
			}
			f.Unpaid = &unpaid
		}
		students, err := api.svc.Filter(ctx.Request().Context(), f)
		if err != nil {
			return errors.Wrap(err, "filtering students")
		}
		return ctx.JSON(http.StatusOK, students)
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	students, err := api.svc.Fetch(ctx.Request().Context(), claims.Subject, force)
	if err != nil {
		return errors.Wrap(err, "fetching students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	data.TeacherID = claims.Subject

	stu, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	stu, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) setSchedule(ctx echo.Context) error {
	var data struct {
		Schedule string `json:"schedule"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding schedule")
	}

	stu, err := api.svc.SetSchedule(ctx.Request().Context(), ctx.Param("id"), data.Schedule)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting schedule")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) setUnpaid(ctx echo.Context) error {
	var data struct {
		Unpaid bool `json:"unpaid"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding unpaid flag")
	}

	stu, err := api.svc.SetUnpaid(ctx.Request().Context(), ctx.Param("id"), data.Unpaid)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting unpaid flag")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) ticketAlerts(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	// warm the cache so alerts reflect the backend
	if _, err = api.svc.Fetch(ctx.Request().Context(), claims.Subject, false); err != nil {
		return errors.Wrap(err, "fetching students")
	}
	return ctx.JSON(http.StatusOK, api.svc.TicketAlerts(claims.Subject, time.Now()))
}

// stream pushes roster refreshes as server-sent events. It is only available
// when the active data source supports change streams.
func (api *studentApi) stream(ctx echo.Context) error {
	if api.repos == nil || api.repos.MongoStudents == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "streaming requires the document backend")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events := make(chan []student.Student, 1)
	sub, err := api.repos.MongoStudents.Watch(ctx.Request().Context(), claims.Subject, func(students []student.Student) {
		select {
		case events <- students:
		default: // drop when the client is slow; the next event carries full state
		}
	})
	if err != nil {
		return errors.Wrap(err, "subscribing to student changes")
	}
	defer sub.Close()

	enc := json.NewEncoder(res)
	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case students := <-events:
			if _, err = fmt.Fprint(res, "data: "); err != nil {
				return nil
			}
			if err = enc.Encode(students); err != nil {
				return nil
			}
			if _, err = fmt.Fprint(res, "\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
