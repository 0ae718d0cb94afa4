package http

import (
	"errors"
	"net/http"
	"strings"

	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
	"stablelend-backend/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

// writeError maps domain/usecase errors to HTTP responses.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lending.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, loan.ErrNotFound),
		errors.Is(err, loan.ErrNoActiveLoan),
		errors.Is(err, pool.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrLoanAlreadyActive),
		errors.Is(err, loan.ErrOverpayment),
		errors.Is(err, lending.ErrCreditLimitExceeded),
		errors.Is(err, lending.ErrNothingWithdrawable),
		errors.Is(err, pool.ErrInsufficientFunds):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, pool.ErrPaused):
		return c.JSON(http.StatusLocked, ErrorResponse{Error: err.Error()})
	case errors.Is(err, uow.ErrLockTimeout):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, pool.ErrHalted), errors.Is(err, pool.ErrLedgerCorruption):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// walletFrom reads and validates the caller wallet header. Mutating routes
// already get this checked by the idempotency middleware; reads come in bare.
func walletFrom(c echo.Context) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(c.Request().Header.Get("Ax-Wallet-Address")))
	return w, reWallet.MatchString(w)
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
