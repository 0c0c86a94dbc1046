package middleware

import (
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidatedBodyKey is the fiber.Ctx locals key holding the parsed request body.
const ValidatedBodyKey = "validated_body"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateBody parses the JSON body into a fresh T, validates it and stores
// the pointer in locals under ValidatedBodyKey.
func ValidateBody[T any](vm *ValidationMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("body", err.Error())}
		}
		if errs := vm.validator.ValidateStruct(req); len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedBodyKey, req)
		return c.Next()
	}
}

// ValidatedBody returns the request stored by ValidateBody.
func ValidatedBody[T any](c *fiber.Ctx) (*T, bool) {
	req, ok := c.Locals(ValidatedBodyKey).(*T)
	return req, ok
}
