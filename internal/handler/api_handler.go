package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"usermgmt/internal/auth"
	"usermgmt/internal/errors"
)

// APIHandler exposes the session's data as JSON.
type APIHandler struct {
	console ConsoleService
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(console ConsoleService) *APIHandler {
	return &APIHandler{console: console}
}

// TaskStatusRequest identifies a welcome email task.
type TaskStatusRequest struct {
	TaskID string `param:"id" validate:"required,max=128"`
}

// ListUsers godoc
// @Summary List the session's users
// @Description Returns the list as the console currently shows it. The first call of a session loads it from the user service.
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *APIHandler) ListUsers(c echo.Context) error {
	sid, err := auth.SessionID(c)
	if err != nil {
		return mapError(err)
	}
	users, err := h.console.Users(c.Request().Context(), sid)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetTaskStatus godoc
// @Summary Get welcome email task status
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.TaskStatusResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *APIHandler) GetTaskStatus(c echo.Context) error {
	var req TaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	status, err := h.console.TaskStatus(c.Request().Context(), req.TaskID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, status)
}

func mapError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
