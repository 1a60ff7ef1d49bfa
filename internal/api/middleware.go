package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/utils"
)

func (svc *APIService) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return constants.ErrMissingAuthHeader
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := utils.ParseAuthToken(raw)
		if err != nil {
			return err
		}

		ctx.Set(constants.CtxKeyUserID, token.UserID)
		ctx.Set(constants.CtxKeyFacilityID, token.FacilityID)

		return next(ctx)
	}
}
