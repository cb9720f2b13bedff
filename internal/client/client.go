// Package client holds the typed HTTP clients for the user and email backends.
package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	apperrors "usermgmt/internal/errors"
)

const (
	serviceUsers = "users"
	serviceEmail = "email"
)

func newRestClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *resty.Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if log != nil {
		rc.SetLogger(log)
	}
	return rc
}

func backendError(service, op string, resp *resty.Response) error {
	return &apperrors.BackendError{
		Service:    service,
		Op:         op,
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}
}
