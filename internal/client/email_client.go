package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"usermgmt/internal/model"
)

// EmailClient talks to the email dispatch backend.
type EmailClient struct {
	rc *resty.Client
}

// NewEmailClient builds a client for the email backend at baseURL.
func NewEmailClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *EmailClient {
	return &EmailClient{rc: newRestClient(baseURL, timeout, log)}
}

// SendEmail queues an email and returns the task acknowledgment.
func (c *EmailClient) SendEmail(ctx context.Context, req model.EmailRequest) (*model.EmailResponse, error) {
	var out model.EmailResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/send-email")
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	if resp.IsError() {
		return nil, backendError(serviceEmail, "send email", resp)
	}
	return &out, nil
}

// SendWelcomeEmail queues the canned welcome message for a new user.
func (c *EmailClient) SendWelcomeEmail(ctx context.Context, email, name string) (*model.EmailResponse, error) {
	return c.SendEmail(ctx, WelcomeEmail(email, name))
}

// GetTaskStatus looks up a delivery task.
func (c *EmailClient) GetTaskStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error) {
	var out model.TaskStatusResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("task_id", taskID).
		SetResult(&out).
		Get("/task-status/{task_id}")
	if err != nil {
		return nil, fmt.Errorf("get task status: %w", err)
	}
	if resp.IsError() {
		return nil, backendError(serviceEmail, "get task status", resp)
	}
	return &out, nil
}
