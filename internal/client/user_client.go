package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"usermgmt/internal/model"
)

// UserClient talks to the CRUD user backend.
type UserClient struct {
	rc *resty.Client
}

// NewUserClient builds a client for the user backend at baseURL.
func NewUserClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *UserClient {
	return &UserClient{rc: newRestClient(baseURL, timeout, log)}
}

// ListUsers fetches one page of users.
func (c *UserClient) ListUsers(ctx context.Context, skip, limit int) ([]model.User, error) {
	var users []model.User
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"skip":  strconv.Itoa(skip),
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&users).
		Get("/users")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if resp.IsError() {
		return nil, backendError(serviceUsers, "list users", resp)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// GetUser fetches a single user.
func (c *UserClient) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(uint64(id), 10)).
		SetResult(&user).
		Get("/users/{id}")
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if resp.IsError() {
		return nil, backendError(serviceUsers, "get user", resp)
	}
	return &user, nil
}

// CreateUser creates a user and returns the stored record.
func (c *UserClient) CreateUser(ctx context.Context, in model.UserCreate) (*model.User, error) {
	var user model.User
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&user).
		Post("/users")
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if resp.IsError() {
		return nil, backendError(serviceUsers, "create user", resp)
	}
	return &user, nil
}

// UpdateUser sends the non-nil fields of in and returns the stored record.
func (c *UserClient) UpdateUser(ctx context.Context, id uint, in model.UserUpdate) (*model.User, error) {
	var user model.User
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(uint64(id), 10)).
		SetBody(in).
		SetResult(&user).
		Put("/users/{id}")
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if resp.IsError() {
		return nil, backendError(serviceUsers, "update user", resp)
	}
	return &user, nil
}

// DeleteUser removes a user.
func (c *UserClient) DeleteUser(ctx context.Context, id uint) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(uint64(id), 10)).
		Delete("/users/{id}")
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if resp.IsError() {
		return backendError(serviceUsers, "delete user", resp)
	}
	return nil
}
