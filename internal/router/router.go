package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"usermgmt/docs"
	"usermgmt/internal/auth"
	"usermgmt/internal/config"
	"usermgmt/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.SugaredLogger,
	validate *validator.Validate,
	sessions *auth.JWTService,
	pageHandler *handler.PageHandler,
	apiHandler *handler.APIHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(log))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validate}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Everything below belongs to a browser session.
	console := e.Group("", sessions.Middleware())

	console.GET("/", pageHandler.Index)
	console.POST("/refresh", pageHandler.Refresh)
	console.POST("/users/new", pageHandler.NewUser)
	console.POST("/users/:id/edit", pageHandler.EditUser)
	console.POST("/users/:id/delete", pageHandler.DeleteUser)
	console.POST("/form", pageHandler.SubmitForm)
	console.POST("/form/cancel", pageHandler.CancelForm)

	api := console.Group("/api")
	api.GET("/users", apiHandler.ListUsers)
	api.GET("/tasks/:id", apiHandler.GetTaskStatus)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
