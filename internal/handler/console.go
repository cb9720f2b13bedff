package handler

import (
	"context"

	"usermgmt/internal/model"
	"usermgmt/internal/session"
)

// ConsoleService is the console surface the handlers drive.
type ConsoleService interface {
	Page(ctx context.Context, sid string) (*session.State, error)
	Users(ctx context.Context, sid string) ([]model.User, error)
	Refresh(ctx context.Context, sid string) error
	OpenCreate(ctx context.Context, sid string) error
	OpenEdit(ctx context.Context, sid string, id uint) error
	CancelForm(ctx context.Context, sid string) error
	Submit(ctx context.Context, sid string, values session.FormValues) error
	Delete(ctx context.Context, sid string, id uint) error
	TaskStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error)
}
