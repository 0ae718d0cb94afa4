package http

import (
	"net/http"
	"strings"
	"time"

	"stablelend-backend/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct{ uc *lending.Usecase }

func NewAdminHandler(uc *lending.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) PausePool(c echo.Context) error {
	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	if !reToken.MatchString(token) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	if err := h.uc.PausePool(c.Request().Context(), token); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token, "status": "paused"})
}

func (h *AdminHandler) ResumePool(c echo.Context) error {
	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	if !reToken.MatchString(token) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	if err := h.uc.ResumePool(c.Request().Context(), token); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token, "status": "active"})
}

func (h *AdminHandler) SweepDefaults(c echo.Context) error {
	n, err := h.uc.SweepDefaults(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"defaulted": n})
}
