package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"usermgmt/internal/auth"
	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/session"
	"usermgmt/internal/view"
)

// PageHandler serves the HTML console. Every mutating route answers with a
// redirect back to the page.
type PageHandler struct {
	console ConsoleService
	pages   *view.PageBuilder
	log     *zap.SugaredLogger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(console ConsoleService, pages *view.PageBuilder, log *zap.SugaredLogger) *PageHandler {
	return &PageHandler{console: console, pages: pages, log: log}
}

// Index renders the console page, loading the list on a session's first view.
func (h *PageHandler) Index(c echo.Context) error {
	sid, err := auth.SessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := h.console.Page(c.Request().Context(), sid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Render(http.StatusOK, view.PageTemplate, h.pages.Build(st))
}

// Refresh reloads the whole list.
func (h *PageHandler) Refresh(c echo.Context) error {
	return h.act(c, func(sid string) error {
		return h.console.Refresh(c.Request().Context(), sid)
	})
}

// NewUser opens the create form.
func (h *PageHandler) NewUser(c echo.Context) error {
	return h.act(c, func(sid string) error {
		return h.console.OpenCreate(c.Request().Context(), sid)
	})
}

// EditUser opens the edit form for a listed user.
func (h *PageHandler) EditUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	return h.act(c, func(sid string) error {
		return h.console.OpenEdit(c.Request().Context(), sid, id)
	})
}

// CancelForm closes the form.
func (h *PageHandler) CancelForm(c echo.Context) error {
	return h.act(c, func(sid string) error {
		return h.console.CancelForm(c.Request().Context(), sid)
	})
}

// SubmitForm validates and saves the open form.
func (h *PageHandler) SubmitForm(c echo.Context) error {
	var values session.FormValues
	if err := c.Bind(&values); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid form data",
			Code:  "INVALID_REQUEST",
		})
	}
	return h.act(c, func(sid string) error {
		err := h.console.Submit(c.Request().Context(), sid, values)
		if errors.Is(err, apperrors.ErrFormClosed) {
			// A resubmitted or stale form; the page shows the current state.
			return nil
		}
		return err
	})
}

// DeleteUser deletes a user. The browser confirms before posting.
func (h *PageHandler) DeleteUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	return h.act(c, func(sid string) error {
		return h.console.Delete(c.Request().Context(), sid, id)
	})
}

// act runs fn for the request's session and redirects to the page.
func (h *PageHandler) act(c echo.Context, fn func(sid string) error) error {
	sid, err := auth.SessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := fn(sid); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) fail(c echo.Context, err error) error {
	h.log.Errorw("console request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return mapError(err)
}

func userID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid user id",
			Code:  "INVALID_USER_ID",
		})
	}
	return uint(id), nil
}
