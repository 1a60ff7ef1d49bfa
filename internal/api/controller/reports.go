package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
)

func (c *Controller) SubmitReport(ctx echo.Context) error {
	facilityID, ok := ctx.Get(constants.CtxKeyFacilityID).(string)
	if !ok || facilityID == "" {
		return constants.ErrUnauthorized
	}

	req := new(domain.SubmitReportRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	resp, err := c.reportService.Submit(ctx.Request().Context(), facilityID, "web", req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, resp)
}

func (c *Controller) GetFeedback(ctx echo.Context) error {
	facilityID, ok := ctx.Get(constants.CtxKeyFacilityID).(string)
	if !ok || facilityID == "" {
		return constants.ErrUnauthorized
	}

	resp, err := c.reportService.Feedback(ctx.Request().Context(), facilityID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}
