package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/pic-profile-maker/auth"
	"github.com/krishkalaria12/pic-profile-maker/middleware"
)

type registerRequest struct {
	Name     string  `json:"name" form:"name"`
	Email    string  `json:"email" form:"email"`
	Password string  `json:"password" form:"password"`
	City     *string `json:"city" form:"city"`
	Country  *string `json:"country" form:"country"`
}

// updateRequest carries no email or userType; both are ignored if sent.
type updateRequest struct {
	Name    *string `json:"name" form:"name"`
	City    *string `json:"city" form:"city"`
	Country *string `json:"country" form:"country"`
}

type changePasswordRequest struct {
	ActualPassword string `json:"actual_password" form:"actual_password"`
	NewPassword    string `json:"new_password" form:"new_password"`
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	input := new(registerRequest)
	if err := c.BodyParser(input); err != nil {
		return errorResponse(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	user, err := h.auth.Register(c.UserContext(), auth.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		City:     input.City,
		Country:  input.Country,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) GetMyUser(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}
	return c.JSON(user)
}

func (h *Handler) UpdateMyUser(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}

	input := new(updateRequest)
	if err := c.BodyParser(input); err != nil {
		return errorResponse(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	updated, err := h.auth.UpdateProfile(c.UserContext(), user, auth.ProfileUpdate{
		Name:    input.Name,
		City:    input.City,
		Country: input.Country,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(updated)
}

// DeleteMyUser disables the caller's account and clears the token cookie.
func (h *Handler) DeleteMyUser(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}

	if err := h.auth.Disable(c.UserContext(), user); err != nil {
		return h.handleError(c, err)
	}

	clearTokenCookie(c)
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("User %s has been disabled", user.Email),
	})
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return h.handleError(c, auth.ErrUnauthorized)
	}

	input := new(changePasswordRequest)
	if err := c.BodyParser(input); err != nil {
		return errorResponse(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}
	if input.ActualPassword == "" {
		return h.handleError(c, &ParamError{Param: "actual_password", Message: "is required"})
	}

	if err := h.auth.ChangePassword(c.UserContext(), user, input.ActualPassword, input.NewPassword); err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}
