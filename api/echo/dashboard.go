package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
)

const defaultActivityLimit = 10

type dashboardApi struct {
	conf *core.Config
	svcs Services
}

// DashboardResponse is the teacher home screen payload, assembled from the
// cached stores in a single round trip.
type DashboardResponse struct {
	UnpaidCount         int               `json:"unpaidCount"`
	TicketAlerts        []student.Student `json:"ticketAlerts"`
	RecentActivities    []activity.Entry  `json:"recentActivities"`
	UnreadNotifications int               `json:"unreadNotifications"`
	FinanceSummary      payment.Summary   `json:"financeSummary"`
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svcs Services) {
	api := dashboardApi{conf: conf, svcs: svcs}

	g.GET("/dashboard", api.dashboard, jwt, teacherMiddleware())
	g.GET("/activities", api.activities, jwt, teacherMiddleware())

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.notifications)
	ng.POST("/read-all", api.markAllRead)
	ng.POST("/:id/read", api.markRead)
	ng.DELETE("/:id", api.deleteNotification)
}

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	now := time.Now()

	// warm the stores the derived views read from
	if _, err = api.svcs.Students.Fetch(rctx, claims.Subject, false); err != nil {
		return errors.Wrap(err, "fetching students")
	}
	if _, err = api.svcs.Notifications.Fetch(rctx, claims.Subject, false); err != nil {
		return errors.Wrap(err, "fetching notifications")
	}

	entries, err := api.svcs.Activities.Recent(rctx, claims.Subject, defaultActivityLimit)
	if err != nil {
		return errors.Wrap(err, "fetching recent activities")
	}
	summary, err := api.svcs.Payments.FinanceSummary(rctx, claims.Subject, api.conf.SettlementDay, now)
	if err != nil {
		return errors.Wrap(err, "computing finance summary")
	}

	return ctx.JSON(http.StatusOK, DashboardResponse{
		UnpaidCount:         api.svcs.Students.UnpaidCount(claims.Subject),
		TicketAlerts:        api.svcs.Students.TicketAlerts(claims.Subject, now),
		RecentActivities:    entries,
		UnreadNotifications: api.svcs.Notifications.UnreadCount(claims.Subject),
		FinanceSummary:      summary,
	})
}

func (api *dashboardApi) activities(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	limit := defaultActivityLimit
	if param := ctx.QueryParam("limit"); param != "" {
		limit, err = strconv.Atoi(param)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit param")
		}
	}

	entries, err := api.svcs.Activities.Recent(ctx.Request().Context(), claims.Subject, limit)
	if err != nil {
		return errors.Wrap(err, "fetching activities")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *dashboardApi) notifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	notifications, err := api.svcs.Notifications.Fetch(ctx.Request().Context(), claims.Subject, force)
	if err != nil {
		return errors.Wrap(err, "fetching notifications")
	}
	return ctx.JSON(http.StatusOK, notifications)
}

func (api *dashboardApi) markRead(ctx echo.Context) error {
	ntf, err := api.svcs.Notifications.MarkRead(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, ntf)
}

func (api *dashboardApi) markAllRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svcs.Notifications.MarkAllRead(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "marking all notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *dashboardApi) deleteNotification(ctx echo.Context) error {
	if err := api.svcs.Notifications.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}
