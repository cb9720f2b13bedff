package model

// EmailRequest is the body accepted by the email backend's /send-email.
type EmailRequest struct {
	ToEmails []string `json:"to_emails"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// EmailResponse acknowledges a queued email.
type EmailResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// TaskResult is the outcome of a finished delivery task.
type TaskResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskStatusResponse describes an email delivery task.
type TaskStatusResponse struct {
	TaskID string      `json:"task_id"`
	Status string      `json:"status"`
	Result *TaskResult `json:"result,omitempty"`
}
