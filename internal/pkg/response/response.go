package response

import "github.com/gofiber/fiber/v2"

// Message sends a response with the given status and a {"message": ...} body
func Message(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"message": message,
	})
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Message(c, fiber.StatusNotFound, message)
}

// UnprocessableEntity sends a 422 unprocessable entity response
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Message(c, fiber.StatusUnprocessableEntity, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Message(c, fiber.StatusInternalServerError, message)
}

// UnsupportedMediaType sends a 415 response for non-JSON request bodies
func UnsupportedMediaType(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
		"error": "Unsupported Media Type: Only JSON is supported.",
	})
}
