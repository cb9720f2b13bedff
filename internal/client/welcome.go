package client

import (
	"fmt"
	"html"

	"usermgmt/internal/model"
)

// WelcomeSubject is the subject line of the welcome email.
const WelcomeSubject = "Welcome to User Management System"

const welcomeText = `Hello %s,

Welcome to our User Management System! Your account has been successfully created.

Best regards,
User Management Team`

const welcomeHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome to User Management System</h2>
  <p>Hello <strong>%[1]s</strong>,</p>
  <p>Welcome to our User Management System! Your account has been successfully created.</p>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Account Details:</strong></p>
    <p>Name: %[1]s</p>
    <p>Email: %[2]s</p>
  </div>
  <p>Best regards,<br>User Management Team</p>
</div>`

// WelcomeEmail builds the welcome email for one recipient.
func WelcomeEmail(email, name string) model.EmailRequest {
	return model.EmailRequest{
		ToEmails: []string{email},
		Subject:  WelcomeSubject,
		Body:     fmt.Sprintf(welcomeText, name),
		HTMLBody: fmt.Sprintf(welcomeHTML, html.EscapeString(name), html.EscapeString(email)),
	}
}
