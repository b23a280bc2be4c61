package common

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrLoanNotFound       = errors.New("loan not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func SuccessResponse(c *fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}
