package http

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reWallet = regexp.MustCompile(`^0x[a-f0-9]{40}$`)
	reToken  = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// wallet = 0x + 40-char lowercase hex
	_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return reWallet.MatchString(fl.Field().String())
	})
	// token symbol, e.g. USDT
	_ = v.RegisterValidation("token", func(fl validator.FieldLevel) bool {
		return reToken.MatchString(fl.Field().String())
	})
	// positive decimal string, e.g. "100.50"
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "wallet":
			out = append(out, FieldError{Field: field, Message: "must be 0x followed by 40-char lowercase hex"})
		case "token":
			out = append(out, FieldError{Field: field, Message: "must be an uppercase token symbol"})
		case "amount":
			out = append(out, FieldError{Field: field, Message: "must be a positive decimal string"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
