package http

import (
	"net/http"

	"stablelend-backend/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

type PoolHandler struct{ uc *lending.Usecase }

func NewPoolHandler(uc *lending.Usecase) *PoolHandler { return &PoolHandler{uc: uc} }

func (h *PoolHandler) Status(c echo.Context) error {
	dto, err := h.uc.PoolStatus(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
