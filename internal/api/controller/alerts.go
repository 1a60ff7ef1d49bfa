package controller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/phip-project/phip/internal/pkg/store"
)

func (c *Controller) ListAlerts(ctx echo.Context) error {
	filter := store.AlertFilter{Limit: 50}

	if raw := ctx.QueryParams().Get("region_id"); raw != "" {
		regionID, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			filter.RegionID = &regionID
		}
	}
	if disease := ctx.QueryParams().Get("disease"); disease != "" {
		filter.Disease = &disease
	}
	if raw := ctx.QueryParams().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	alerts, err := c.alertsService.List(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, alerts)
}
