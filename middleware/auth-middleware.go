package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/pic-profile-maker/auth"
	"github.com/krishkalaria12/pic-profile-maker/models"
)

const userKey = "user"

// ErrNoUser is returned by CurrentUser outside of a protected route.
var ErrNoUser = errors.New("no authenticated user in context")

// UserResolver turns a bearer token into an active user. Token failures
// must wrap auth.ErrUnauthorized; any other error is a server failure.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware takes the token from the Authorization header or the JWT
// cookie and stores the resolved user in the request locals.
func AuthMiddleware(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			return unauthorized(c)
		}

		user, err := resolver.CurrentUser(c.UserContext(), tokenStr)
		if errors.Is(err, auth.ErrUnauthorized) {
			return unauthorized(c)
		}
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return c.Cookies("JWT")
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": "Could not validate credentials",
		"data":    nil,
	})
}
