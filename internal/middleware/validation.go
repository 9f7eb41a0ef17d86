package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "tsanalyzer/internal/errors"
)

// Validator wraps go-playground/validator for request payload validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a request validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateStruct validates a decoded request payload and converts field
// failures into an APIError carrying per-field details.
func (v *Validator) ValidateStruct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: formatFieldError(fe),
		})
	}
	return apierrors.NewValidationErrors(fields)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ContentTypeValidator rejects requests whose Content-Type does not match
// one of the allowed types. Requests without a body are passed through.
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 || r.Method == http.MethodGet || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			ct := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(ct, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusUnsupportedMediaType)
			response := `{"type":"/errors/unsupported-media-type","title":"Unsupported Media Type","status":415,"detail":"Content-Type ` + ct + ` is not supported"}`
			w.Write([]byte(response))
		})
	}
}
