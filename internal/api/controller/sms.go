package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/phip-project/phip/internal/domain"
)

func (c *Controller) SubmitSMSReport(ctx echo.Context) error {
	req := new(domain.SMSReportRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	resp, err := c.reportService.SubmitSMS(ctx.Request().Context(), req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, resp)
}
