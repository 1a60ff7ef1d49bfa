package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/spf13/viper"
)

func (c *Controller) UpsertEnvironment(ctx echo.Context) error {
	req := new(domain.EnvMetricRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	if err := c.ingestService.UpsertEnvironment(ctx.Request().Context(), req); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) UpsertDiseaseHistory(ctx echo.Context) error {
	req := new(domain.DiseaseHistoryRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	if err := c.ingestService.UpsertDiseaseHistory(ctx.Request().Context(), req); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) BackfillBulletin(ctx echo.Context) error {
	req := new(domain.BackfillBulletinRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	url := req.URL
	if url == "" {
		url = viper.GetString(constants.ViperBulletinURL)
	}

	saved, err := c.ingestService.BackfillBulletin(ctx.Request().Context(), url, req.WeekStart)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]int{"saved": saved})
}
