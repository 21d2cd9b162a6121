package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	handler "github.com/krishkalaria12/pic-profile-maker/handlers"
	"github.com/krishkalaria12/pic-profile-maker/middleware"
)

const appName = "pic-profile-maker"

// NewApp builds the Fiber app with every route mounted.
func NewApp(h *handler.Handler, resolver middleware.UserResolver, bodyLimit int, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if accessLog {
		app.Use(logger.New())
	}

	SetupRoutes(app, h, resolver)
	return app
}

func SetupRoutes(app *fiber.App, h *handler.Handler, resolver middleware.UserResolver) {
	protected := middleware.AuthMiddleware(resolver)

	app.Get("/", h.Home)

	// Auth
	app.Post("/userlogin", h.Login)

	// User
	users := app.Group("/users")
	users.Post("/newuser", h.CreateUser)
	users.Get("/myuser", protected, h.GetMyUser)
	users.Put("/myuser", protected, h.UpdateMyUser)
	users.Delete("/myuser", protected, h.DeleteMyUser)
	users.Put("/myuser/changepassword", protected, h.ChangePassword)

	// Pictures
	pics := app.Group("/pictures")
	pics.Post("/userpicture", protected, h.CreateUserPicture)
	pics.Get("/mypictures", protected, h.ListMyPictures)
	pics.Get("/mypictures/:filename", protected, h.GetMyPicture)
	pics.Post("/temppicture", h.TempPicture)
	pics.Post("/removebg", h.RemoveBackground)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
