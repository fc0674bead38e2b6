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
	Error     string       `json:"error"`
	Retryable bool         `json:"retryable,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reTerms = regexp.MustCompile(`^[1-9][0-9]*(,\s*[1-9][0-9]*)*$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// account / record ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// human-readable decimal amount string, strictly positive
	_ = v.RegisterValidation("decstr", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	// rate string: decimal in [0,1]
	_ = v.RegisterValidation("rate", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
	})
	// comma-separated positive month counts, e.g. "3,6,12"
	_ = v.RegisterValidation("terms", func(fl validator.FieldLevel) bool {
		return reTerms.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors to []FieldError with readable messages.
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
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "decstr":
			out = append(out, FieldError{Field: field, Message: "must be a positive decimal string"})
		case "rate":
			out = append(out, FieldError{Field: field, Message: "must be a decimal between 0 and 1"})
		case "terms":
			out = append(out, FieldError{Field: field, Message: "must be comma-separated month counts"})
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
