package http

import (
	"net/http"
	"strings"

	"stablelend-backend/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

type LendingHandler struct{ uc *lending.Usecase }

func NewLendingHandler(uc *lending.Usecase) *LendingHandler { return &LendingHandler{uc: uc} }

type amountReq struct {
	Amount string `json:"amount" validate:"required,amount"`
}

type borrowReq struct {
	Amount   string `json:"amount"    validate:"required,amount"`
	TermDays int    `json:"term_days" validate:"omitempty,gte=1,lte=3650"`
}

func (h *LendingHandler) token(c echo.Context) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	return t, reToken.MatchString(t)
}

func (h *LendingHandler) Deposit(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Deposit(c.Request().Context(), wallet, token, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LendingHandler) Withdraw(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	dto, err := h.uc.Withdraw(c.Request().Context(), wallet, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LendingHandler) Borrow(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	var req borrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Borrow(c.Request().Context(), lending.BorrowInput{
		Wallet:   wallet,
		Token:    token,
		Amount:   req.Amount,
		TermDays: req.TermDays,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LendingHandler) Repay(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Repay(c.Request().Context(), wallet, token, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LendingHandler) Yields(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	dto, err := h.uc.Yields(c.Request().Context(), wallet, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LendingHandler) Withdrawable(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	dto, err := h.uc.Withdrawable(c.Request().Context(), wallet, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LendingHandler) GetLoan(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), wallet, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LendingHandler) Payoff(c echo.Context) error {
	token, ok := h.token(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token path param"})
	}
	wallet, ok := walletFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Wallet-Address"})
	}
	dto, err := h.uc.Payoff(c.Request().Context(), wallet, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
