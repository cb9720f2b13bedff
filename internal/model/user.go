package model

// User is a record owned by the user backend.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserCreate is the payload for creating a user.
type UserCreate struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Email string `json:"email" validate:"required,email"`
}

// UserUpdate is the payload for updating a user. Nil fields are not sent, so
// the backend keeps their current value.
type UserUpdate struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}
