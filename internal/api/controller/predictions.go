package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetPrediction(ctx echo.Context) error {
	state := ctx.Param("state")
	district := ctx.Param("district")

	disease := ctx.QueryParams().Get("disease")
	if disease == "" {
		disease = "cholera"
	}

	resp, err := c.predictService.Predict(ctx.Request().Context(), state, district, disease)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetHeatmap(ctx echo.Context) error {
	disease := ctx.QueryParams().Get("disease")
	if disease == "" {
		disease = "cholera"
	}

	resp, err := c.predictService.Heatmap(ctx.Request().Context(), disease)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) Retrain(ctx echo.Context) error {
	if err := c.predictService.Retrain(ctx.Request().Context()); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": "retrained"})
}
