package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/phip-project/phip/internal/domain"
)

func (c *Controller) Register(ctx echo.Context) error {
	req := new(domain.RegisterFacilityRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	resp, err := c.authService.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, resp)
}

func (c *Controller) Login(ctx echo.Context) error {
	req := new(domain.LoginRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	resp, err := c.authService.Login(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}
