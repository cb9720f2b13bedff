package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/session"
)

// Toast messages.
const (
	MsgLoadFailed        = "Failed to load users"
	MsgCreateFailed      = "Failed to create user"
	MsgCreatedNoEmail    = "User created successfully, but failed to send welcome email"
	MsgUpdated           = "User updated successfully"
	MsgUpdateFailed      = "Failed to update user"
	MsgDeleted           = "User deleted successfully"
	MsgDeleteFailed      = "Failed to delete user"
	MsgUserNotInList     = "User not found"
	MsgFormClosed        = "The form was already closed"
	msgCreatedEmailQueue = "User created successfully! Welcome email queued (Task ID: %s)"
)

// UserBackend is the part of the user service the console calls.
type UserBackend interface {
	ListUsers(ctx context.Context, skip, limit int) ([]model.User, error)
	CreateUser(ctx context.Context, in model.UserCreate) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// EmailBackend is the part of the email service the console calls.
type EmailBackend interface {
	SendWelcomeEmail(ctx context.Context, email, name string) (*model.EmailResponse, error)
	GetTaskStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error)
}

// StateStore persists console state between requests.
type StateStore interface {
	Load(ctx context.Context, id string) (*session.State, error)
	Save(ctx context.Context, id string, st *session.State) error
}

// Console orchestrates one admin session: it owns the session's user list and
// form state and drives the two backends.
//
// Every operation handles backend failures itself by queueing a toast; the
// returned error is reserved for state store failures and stale requests.
type Console struct {
	users     UserBackend
	email     EmailBackend
	store     StateStore
	validator *Validator
	log       *zap.SugaredLogger
	pageSize  int
}

// NewConsole wires a console. pageSize bounds the list fetch.
func NewConsole(users UserBackend, email EmailBackend, store StateStore, validator *Validator, log *zap.SugaredLogger, pageSize int) *Console {
	return &Console{
		users:     users,
		email:     email,
		store:     store,
		validator: validator,
		log:       log,
		pageSize:  pageSize,
	}
}

// Page mounts the session if needed and returns the state to render. Queued
// toasts are handed over exactly once.
func (c *Console) Page(ctx context.Context, sid string) (*session.State, error) {
	if err := c.Mount(ctx, sid); err != nil {
		return nil, err
	}
	var toasts []session.Toast
	st, err := c.update(ctx, sid, func(st *session.State) {
		toasts = st.DrainToasts()
	})
	if err != nil {
		return nil, err
	}
	st.Toasts = toasts
	return st, nil
}

// Users returns the session's current list, mounting it first if needed.
func (c *Console) Users(ctx context.Context, sid string) ([]model.User, error) {
	if err := c.Mount(ctx, sid); err != nil {
		return nil, err
	}
	st, err := c.store.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	return st.Users, nil
}

// Mount performs the initial full fetch of a new session.
func (c *Console) Mount(ctx context.Context, sid string) error {
	st, err := c.store.Load(ctx, sid)
	if err != nil {
		return err
	}
	if st.Loaded {
		return nil
	}
	return c.reload(ctx, sid)
}

// Refresh replaces the whole list with a fresh fetch.
func (c *Console) Refresh(ctx context.Context, sid string) error {
	return c.reload(ctx, sid)
}

func (c *Console) reload(ctx context.Context, sid string) error {
	ctx = context.WithoutCancel(ctx)
	if _, err := c.update(ctx, sid, func(st *session.State) { st.Loading = true }); err != nil {
		return err
	}
	settled := false
	defer c.settle(ctx, sid, &settled, func(st *session.State) { st.Loading = false })

	users, fetchErr := c.users.ListUsers(ctx, 0, c.pageSize)
	if fetchErr != nil {
		c.log.Errorw("failed to load users", "error", fetchErr)
	}

	_, err := c.update(ctx, sid, func(st *session.State) {
		st.Loading = false
		st.Loaded = true
		if fetchErr != nil {
			st.PushToast(session.Toast{Kind: session.ToastError, Message: MsgLoadFailed})
			return
		}
		st.ReplaceUsers(users)
	})
	settled = err == nil
	return err
}

// OpenCreate opens an empty create form.
func (c *Console) OpenCreate(ctx context.Context, sid string) error {
	_, err := c.update(ctx, sid, func(st *session.State) { st.OpenCreate() })
	return err
}

// OpenEdit opens the form for the listed user with the given id.
func (c *Console) OpenEdit(ctx context.Context, sid string, id uint) error {
	_, err := c.update(ctx, sid, func(st *session.State) {
		u, ok := st.FindUser(id)
		if !ok {
			st.PushToast(session.Toast{Kind: session.ToastError, Message: MsgUserNotInList})
			return
		}
		st.OpenEdit(u)
	})
	return err
}

// CancelForm closes the form without asking.
func (c *Console) CancelForm(ctx context.Context, sid string) error {
	_, err := c.update(ctx, sid, func(st *session.State) { st.CloseForm() })
	return err
}

// Submit validates the form values against the open form's schema and runs
// the create or update flow.
func (c *Console) Submit(ctx context.Context, sid string, values session.FormValues) error {
	ctx = context.WithoutCancel(ctx)
	st, err := c.store.Load(ctx, sid)
	if err != nil {
		return err
	}
	if st.Form == nil || st.Form.Mode == session.FormEdit && st.Form.Editing == nil {
		st.Form = nil
		st.PushToast(session.Toast{Kind: session.ToastError, Message: MsgFormClosed})
		if err := c.store.Save(ctx, sid, st); err != nil {
			return err
		}
		return apperrors.ErrFormClosed
	}

	settled := false
	defer c.settle(ctx, sid, &settled, func(st *session.State) { st.Submitting = false })
	if st.Form.Mode == session.FormEdit {
		err = c.submitEdit(ctx, sid, st, values)
	} else {
		err = c.submitCreate(ctx, sid, st, values)
	}
	settled = err == nil
	return err
}

func (c *Console) submitCreate(ctx context.Context, sid string, st *session.State, values session.FormValues) error {
	payload, fieldErrs := c.validator.Create(values)
	if err := c.beginSubmit(ctx, sid, st, values, fieldErrs); err != nil {
		return err
	}
	if fieldErrs != nil {
		return nil
	}

	created, err := c.users.CreateUser(ctx, payload)
	if err != nil {
		c.log.Errorw("failed to create user", "error", err)
		_, saveErr := c.update(ctx, sid, func(st *session.State) {
			st.Submitting = false
			st.PushToast(session.Toast{Kind: session.ToastError, Message: MsgCreateFailed})
		})
		return saveErr
	}

	// The record is listed before the email is attempted; the email outcome
	// never takes it back out.
	if _, err := c.update(ctx, sid, func(st *session.State) { st.AppendUser(*created) }); err != nil {
		return err
	}

	toast := session.Toast{Kind: session.ToastWarning, Message: MsgCreatedNoEmail}
	resp, err := c.email.SendWelcomeEmail(ctx, created.Email, created.Name)
	if err != nil {
		c.log.Errorw("failed to send welcome email", "user_id", created.ID, "error", err)
	} else {
		toast = session.Toast{
			Kind:    session.ToastSuccess,
			Message: fmt.Sprintf(msgCreatedEmailQueue, resp.TaskID),
			TaskID:  resp.TaskID,
		}
	}

	_, err = c.update(ctx, sid, func(st *session.State) {
		st.CloseForm()
		st.PushToast(toast)
	})
	return err
}

func (c *Console) submitEdit(ctx context.Context, sid string, st *session.State, values session.FormValues) error {
	editing := *st.Form.Editing
	payload, fieldErrs := c.validator.Update(values, editing)
	if err := c.beginSubmit(ctx, sid, st, values, fieldErrs); err != nil {
		return err
	}
	if fieldErrs != nil {
		return nil
	}

	updated, err := c.users.UpdateUser(ctx, editing.ID, payload)
	if err != nil {
		c.log.Errorw("failed to update user", "user_id", editing.ID, "error", err)
		_, saveErr := c.update(ctx, sid, func(st *session.State) {
			st.Submitting = false
			st.PushToast(session.Toast{Kind: session.ToastError, Message: MsgUpdateFailed})
		})
		return saveErr
	}

	_, err = c.update(ctx, sid, func(st *session.State) {
		st.ReplaceUser(editing.ID, *updated)
		st.CloseForm()
		st.PushToast(session.Toast{Kind: session.ToastSuccess, Message: MsgUpdated})
	})
	return err
}

// beginSubmit records the submitted values. With field errors the form is
// re-shown; otherwise the session enters Submitting.
func (c *Console) beginSubmit(ctx context.Context, sid string, st *session.State, values session.FormValues, fieldErrs FieldErrors) error {
	st.Form.Values = values
	st.Form.Errors = fieldErrs
	st.Submitting = fieldErrs == nil
	return c.store.Save(ctx, sid, st)
}

// Delete removes a user. The browser has already confirmed the intent.
func (c *Console) Delete(ctx context.Context, sid string, id uint) error {
	ctx = context.WithoutCancel(ctx)
	if _, err := c.update(ctx, sid, func(st *session.State) { st.SetDeleting(id) }); err != nil {
		return err
	}
	settled := false
	defer c.settle(ctx, sid, &settled, func(st *session.State) { st.ClearDeleting() })

	delErr := c.users.DeleteUser(ctx, id)
	if delErr != nil {
		c.log.Errorw("failed to delete user", "user_id", id, "error", delErr)
	}

	_, err := c.update(ctx, sid, func(st *session.State) {
		st.ClearDeleting()
		if delErr != nil {
			st.PushToast(session.Toast{Kind: session.ToastError, Message: MsgDeleteFailed})
			return
		}
		st.RemoveUser(id)
		st.PushToast(session.Toast{Kind: session.ToastSuccess, Message: MsgDeleted})
	})
	settled = err == nil
	return err
}

// TaskStatus looks up a welcome email delivery task.
func (c *Console) TaskStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error) {
	status, err := c.email.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task status: %w", err)
	}
	return status, nil
}

// settle clears an in-flight flag when the operation that set it ends without
// its final save, for example on a panic or a store error.
func (c *Console) settle(ctx context.Context, sid string, settled *bool, clear func(st *session.State)) {
	if *settled {
		return
	}
	if _, err := c.update(ctx, sid, clear); err != nil {
		c.log.Errorw("failed to clear in-flight state", "error", err)
	}
}

// update loads the latest state, applies fn and saves it back.
func (c *Console) update(ctx context.Context, sid string, fn func(st *session.State)) (*session.State, error) {
	st, err := c.store.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	fn(st)
	if err := c.store.Save(ctx, sid, st); err != nil {
		return nil, err
	}
	return st, nil
}
