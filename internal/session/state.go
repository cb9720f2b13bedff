// Package session holds the per-browser console state and its stores.
package session

import "usermgmt/internal/model"

// FormMode tells whether the modal form creates or edits a user.
type FormMode string

const (
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// ToastKind selects the styling of a toast.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

// Toast is a one-shot notification shown on the next render.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
	TaskID  string    `json:"task_id,omitempty"`
}

// FormValues are the raw field values as typed by the user.
type FormValues struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
}

// Form is the open modal form. Errors is keyed by field name.
type Form struct {
	Mode    FormMode          `json:"mode"`
	Editing *model.User       `json:"editing,omitempty"`
	Values  FormValues        `json:"values"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// State is everything the console knows about one browser session.
// Users is the rendering source of truth; it only changes after a backend
// call succeeds and is reconciled with the backend by a full reload.
type State struct {
	Users      []model.User `json:"users"`
	Loaded     bool         `json:"loaded"`
	Loading    bool         `json:"loading"`
	Submitting bool         `json:"submitting"`
	// DeletingID marks the single row whose delete is in flight.
	DeletingID *uint   `json:"deleting_id,omitempty"`
	Form       *Form   `json:"form,omitempty"`
	Toasts     []Toast `json:"toasts,omitempty"`
}

// New returns the state of a session that has not been mounted yet.
func New() *State {
	return &State{Users: []model.User{}}
}

// ReplaceUsers swaps the whole list for a fresh fetch.
func (s *State) ReplaceUsers(users []model.User) {
	s.Users = append(make([]model.User, 0, len(users)), users...)
}

// AppendUser adds a newly created record at the end of the list.
func (s *State) AppendUser(u model.User) {
	s.Users = append(s.Users, u)
}

// ReplaceUser swaps the record with the given id in place.
func (s *State) ReplaceUser(id uint, u model.User) bool {
	for i := range s.Users {
		if s.Users[i].ID == id {
			s.Users[i] = u
			return true
		}
	}
	return false
}

// RemoveUser drops the record with the given id.
func (s *State) RemoveUser(id uint) bool {
	for i := range s.Users {
		if s.Users[i].ID == id {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			return true
		}
	}
	return false
}

// FindUser returns the record with the given id.
func (s *State) FindUser(id uint) (model.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// OpenCreate opens an empty create form.
func (s *State) OpenCreate() {
	s.Form = &Form{Mode: FormCreate}
}

// OpenEdit opens the form pre-filled with u.
func (s *State) OpenEdit(u model.User) {
	editing := u
	s.Form = &Form{
		Mode:    FormEdit,
		Editing: &editing,
		Values:  FormValues{Name: u.Name, Email: u.Email},
	}
}

// CloseForm closes the modal form.
func (s *State) CloseForm() {
	s.Form = nil
	s.Submitting = false
}

// SetDeleting marks id as the row being deleted. It overwrites any previous mark.
func (s *State) SetDeleting(id uint) {
	s.DeletingID = &id
}

// ClearDeleting removes the mark, whichever row it points at.
func (s *State) ClearDeleting() {
	s.DeletingID = nil
}

// PushToast queues a notification.
func (s *State) PushToast(t Toast) {
	s.Toasts = append(s.Toasts, t)
}

// DrainToasts returns the queued notifications and clears the queue.
func (s *State) DrainToasts() []Toast {
	out := s.Toasts
	s.Toasts = nil
	return out
}
