package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login exchanges an email and password for a bearer token. The token is
// also set as the JWT cookie for browser clients.
func (h *Handler) Login(c *fiber.Ctx) error {
	input := new(loginRequest)
	if err := c.BodyParser(input); err != nil {
		return errorResponse(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return errorResponse(c, fiber.StatusUnprocessableEntity, "username and password are required")
	}

	token, err := h.auth.Authenticate(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "JWT",
		Value:    token.AccessToken,
		Expires:  time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(fiber.StatusOK).JSON(token)
}

func clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "JWT",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
