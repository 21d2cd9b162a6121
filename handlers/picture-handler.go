package handler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/pic-profile-maker/auth"
	"github.com/krishkalaria12/pic-profile-maker/middleware"
)

// CreateUserPicture stores a processed picture for the caller and records it.
func (h *Handler) CreateUserPicture(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}

	req, closer, err := parsePictureRequest(c)
	if err != nil {
		return h.handleError(c, err)
	}
	defer closer.Close()

	result, err := h.pictures.ProduceUserPicture(c.UserContext(), user, req)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// TempPicture returns a processed preview without storing anything.
func (h *Handler) TempPicture(c *fiber.Ctx) error {
	req, closer, err := parsePictureRequest(c)
	if err != nil {
		return h.handleError(c, err)
	}
	defer closer.Close()

	path, err := h.pictures.ProduceTemporaryPicture(c.UserContext(), req, true)
	if err != nil {
		return h.handleError(c, err)
	}

	return sendPicture(c, path)
}

// RemoveBackground returns the upload with its background removed.
func (h *Handler) RemoveBackground(c *fiber.Ctx) error {
	quality, err := parseQualityParam(c)
	if err != nil {
		return h.handleError(c, err)
	}

	upload, closer, err := openUpload(c)
	if err != nil {
		return h.handleError(c, err)
	}
	defer closer.Close()

	path, err := h.pictures.RemoveBackgroundOnly(c.UserContext(), upload, quality, true)
	if err != nil {
		return h.handleError(c, err)
	}

	return sendPicture(c, path)
}

func (h *Handler) ListMyPictures(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}

	list, err := h.pictures.ListUserPictures(c.UserContext(), user)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(list)
}

func (h *Handler) GetMyPicture(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}

	path, err := h.pictures.OpenUserPicture(c.UserContext(), user, c.Params("filename"))
	if err != nil {
		return h.handleError(c, err)
	}

	return sendPicture(c, path)
}

// sendPicture writes the file at path as the response body. Temporary
// pictures may be removed shortly after, so the bytes are read up front.
func sendPicture(c *fiber.Ctx, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read picture: %w", err)
	}

	c.Type(filepath.Ext(path))
	return c.Status(fiber.StatusOK).Send(content)
}
