package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/pic-profile-maker/auth"
	"github.com/krishkalaria12/pic-profile-maker/logger"
	"github.com/krishkalaria12/pic-profile-maker/pictures"
	"github.com/krishkalaria12/pic-profile-maker/repository"
)

const homePage = `<!DOCTYPE html>
<html>
<head><title>Pic Profile Maker</title></head>
<body><h1>Pic Profile Maker</h1><p>Upload a photo and get a profile picture back.</p></body>
</html>`

// Handler serves the HTTP API.
type Handler struct {
	auth     *auth.Service
	pictures *pictures.Maker
	logger   *logger.Logger
}

func New(authService *auth.Service, maker *pictures.Maker, log *logger.Logger) *Handler {
	return &Handler{
		auth:     authService,
		pictures: maker,
		logger:   log,
	}
}

func (h *Handler) Home(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString(homePage)
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

// handleError maps service errors to status codes. Anything unknown is a 500.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	var (
		validationErr *auth.ValidationError
		paramErr      *ParamError
		noFaceErr     *pictures.NoFaceError
	)

	switch {
	case errors.As(err, &validationErr):
		return errorResponse(c, fiber.StatusUnprocessableEntity, validationErr.Error())
	case errors.As(err, &paramErr):
		return errorResponse(c, fiber.StatusUnprocessableEntity, paramErr.Error())
	case errors.As(err, &noFaceErr):
		return errorResponse(c, fiber.StatusUnprocessableEntity, noFaceErr.Message)
	case errors.Is(err, pictures.ErrInvalidRequest):
		return errorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrEmailTaken):
		return errorResponse(c, fiber.StatusConflict, "Email already registered")
	case errors.Is(err, auth.ErrUnauthorized):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return errorResponse(c, fiber.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, pictures.ErrPictureNotFound):
		return errorResponse(c, fiber.StatusNotFound, "Picture not found")
	default:
		h.logger.Error("Handler: request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
