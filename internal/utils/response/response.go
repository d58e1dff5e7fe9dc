package response

import (
	stderrors "errors"

	"paylink/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

// DomainError maps a service error to its HTTP status. Unknown errors are
// reported as a generic 500 so internals never leak to clients.
func DomainError(c *fiber.Ctx, err error) error {
	var domainErr *errors.DomainError
	if !stderrors.As(err, &domainErr) {
		return ServerError(c, "something went wrong, please try again")
	}

	status := fiber.StatusInternalServerError
	switch domainErr.Code {
	case errors.CodeValidation:
		status = fiber.StatusBadRequest
	case errors.CodeNotFound:
		status = fiber.StatusNotFound
	case errors.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	case errors.CodeDuplicateTransaction:
		status = fiber.StatusConflict
	case errors.CodeInsufficientFunds, errors.CodeLimitExceeded:
		status = fiber.StatusUnprocessableEntity
	case errors.CodeFraudBlocked:
		status = fiber.StatusForbidden
	case errors.CodeConcurrentModification:
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(fiber.Map{
		"error": domainErr.Message,
		"code":  domainErr.Code,
	})
}
