package view

import "usermgmt/internal/session"

const (
	TitleCreate  = "Create New User"
	TitleEdit    = "Edit User"
	SubmitCreate = "Create User"
	SubmitEdit   = "Update User"
	SubmitBusy   = "Saving..."
)

// FormView is the modal form for one render.
type FormView struct {
	Title       string
	SubmitLabel string
	Name        string
	Email       string
	NameError   string
	EmailError  string
	Disabled    bool
}

// BuildForm renders the open form. It returns nil when no form is open.
func BuildForm(form *session.Form, submitting bool) *FormView {
	if form == nil {
		return nil
	}
	fv := &FormView{
		Title:       TitleCreate,
		SubmitLabel: SubmitCreate,
		Name:        form.Values.Name,
		Email:       form.Values.Email,
		NameError:   form.Errors["name"],
		EmailError:  form.Errors["email"],
		Disabled:    submitting,
	}
	if form.Mode == session.FormEdit {
		fv.Title = TitleEdit
		fv.SubmitLabel = SubmitEdit
	}
	if submitting {
		fv.SubmitLabel = SubmitBusy
	}
	return fv
}
