package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
)

type paymentApi struct {
	conf *core.Config
	svc  *payment.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc *payment.Service) {
	api := paymentApi{conf: conf, svc: svc}

	pg := g.Group("/payments", jwt)
	pg.GET("", api.query, teacherMiddleware())
	pg.POST("", api.create, teacherMiddleware())
	pg.GET("/aggregate", api.aggregate, teacherMiddleware())
	pg.GET("/summary", api.summary, teacherMiddleware())
	pg.POST("/expenses", api.addExpense, teacherMiddleware())
	pg.DELETE("/expenses/:id", api.deleteExpense, teacherMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.POST("/:id/paid", api.markPaid, teacherMiddleware())
	pg.DELETE("/:id", api.destroy, teacherMiddleware())
}

func (api *paymentApi) query(ctx echo.Context) error {
	if studentID := ctx.QueryParam("studentId"); studentID != "" {
		records, err := api.svc.ForStudent(ctx.Request().Context(), studentID)
		if err != nil {
			return errors.Wrap(err, "fetching student payments")
		}
		return ctx.JSON(http.StatusOK, records)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	records, err := api.svc.Fetch(ctx.Request().Context(), claims.Subject, force)
	if err != nil {
		return errors.Wrap(err, "fetching payments")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *paymentApi) aggregate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	records, err := api.svc.FetchAggregate(ctx.Request().Context(), claims.Subject, time.Now())
	if err != nil {
		return errors.Wrap(err, "fetching payment aggregate")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *paymentApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sum, err := api.svc.FinanceSummary(ctx.Request().Context(), claims.Subject, api.conf.SettlementDay, time.Now())
	if err != nil {
		return errors.Wrap(err, "computing finance summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *paymentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data payment.NewRecord
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	data.TeacherID = claims.Subject

	rec, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting payment record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *paymentApi) markPaid(ctx echo.Context) error {
	var data MarkPaidRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkPaidRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.MarkPaid(ctx.Request().Context(), ctx.Param("id"), data.Method)
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking payment paid")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting payment record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *paymentApi) addExpense(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data payment.NewExpense
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}
	data.TeacherID = claims.Subject

	exp, err := api.svc.AddExpense(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating expense")
	}
	return ctx.JSON(http.StatusCreated, exp)
}

func (api *paymentApi) deleteExpense(ctx echo.Context) error {
	if err := api.svc.DeleteExpense(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == payment.ErrExpenseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting expense")
	}
	return ctx.NoContent(http.StatusNoContent)
}
