package view

import (
	"net/url"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"usermgmt/internal/session"
)

// ToastView is a notification with an optional link to its email task.
type ToastView struct {
	Kind    string
	Message string
	TaskURL string
}

// PageView is everything the page template needs.
type PageView struct {
	TotalUsers string
	Refreshing bool
	List       ListView
	Form       *FormView
	Toasts     []ToastView
}

// PageBuilder assembles page views. Task links point at the email service's
// browser-facing address.
type PageBuilder struct {
	printer      *message.Printer
	emailBaseURL string
}

// NewPageBuilder returns a builder linking task ids under emailBaseURL. An
// empty base disables the links.
func NewPageBuilder(emailBaseURL string) *PageBuilder {
	return &PageBuilder{
		printer:      message.NewPrinter(language.English),
		emailBaseURL: emailBaseURL,
	}
}

// Build renders st into a PageView.
func (b *PageBuilder) Build(st *session.State) PageView {
	toasts := make([]ToastView, 0, len(st.Toasts))
	for _, t := range st.Toasts {
		toasts = append(toasts, ToastView{
			Kind:    string(t.Kind),
			Message: t.Message,
			TaskURL: b.taskURL(t.TaskID),
		})
	}
	return PageView{
		TotalUsers: b.printer.Sprintf("%d", len(st.Users)),
		Refreshing: st.Loading,
		List:       BuildList(st.Users, st.Loading, st.DeletingID),
		Form:       BuildForm(st.Form, st.Submitting),
		Toasts:     toasts,
	}
}

func (b *PageBuilder) taskURL(taskID string) string {
	if taskID == "" || b.emailBaseURL == "" {
		return ""
	}
	return b.emailBaseURL + "/task-status/" + url.PathEscape(taskID)
}
