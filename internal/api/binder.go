package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// Binder decodes JSON bodies with sonic and delegates everything else to the
// echo default binder.
type Binder struct {
	fallback *echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{fallback: new(echo.DefaultBinder)}
}

func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()
	if req.ContentLength != 0 && strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(i); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("failed to decode body: %s", err.Error()))
		}
		return b.fallback.BindPathParams(c, i)
	}

	return b.fallback.Bind(i, c)
}
